package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/christianyates/DrupalGeoPicture/internal/repository"
)

var (
	ErrMissingFilename = errors.New("file needs a filename")
	ErrMissingContent  = errors.New("file has no content")
	ErrMissingTitle    = errors.New("node needs a title")
)

// SaveFile stores an uploaded picture and returns its fid as the
// client expects it, a decimal string.
func (s *Service) SaveFile(ctx context.Context, uid int, filename, content string) (string, error) {
	if filename == "" {
		return "", ErrMissingFilename
	}
	if content == "" {
		return "", ErrMissingContent
	}

	file := &repository.File{Filename: filename, UID: uid, Content: content}
	if err := s.store.CreateFile(ctx, file); err != nil {
		return "", fmt.Errorf("failed to store file: %w", err)
	}
	return strconv.FormatInt(file.FID, 10), nil
}

// PublishNode stores a post and returns its nid as a decimal string.
// The images and locations payloads are kept verbatim.
func (s *Service) PublishNode(ctx context.Context, uid int, name, title, body, nodeType string, images, locations json.RawMessage) (string, error) {
	if title == "" {
		return "", ErrMissingTitle
	}
	if nodeType == "" {
		nodeType = "blog"
	}

	node := &repository.Node{
		UID:         uid,
		Name:        name,
		Title:       title,
		Body:        body,
		Type:        nodeType,
		FieldImages: images,
		Locations:   locations,
	}
	if err := s.store.CreateNode(ctx, node); err != nil {
		return "", fmt.Errorf("failed to store node: %w", err)
	}
	return strconv.FormatInt(node.NID, 10), nil
}

// RecentNodes returns the latest posts, newest first.
func (s *Service) RecentNodes(ctx context.Context, limit int) ([]repository.Node, error) {
	nodes, err := s.store.ListNodes(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}
	return nodes, nil
}
