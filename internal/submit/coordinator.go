// Package submit orchestrates one post submission: a precondition gate,
// draft validation, and the strict upload-then-create backend sequence.
package submit

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/christianyates/DrupalGeoPicture/internal/device"
	"github.com/christianyates/DrupalGeoPicture/internal/domain"
	"github.com/christianyates/DrupalGeoPicture/internal/drupal"
	"github.com/christianyates/DrupalGeoPicture/internal/picture"
	"github.com/christianyates/DrupalGeoPicture/internal/policy"
)

// Precondition failures. All are user-facing and abort the current
// submission only.
var (
	ErrNotLoggedIn    = errors.New("you need to login before posting picture")
	ErrMissingPicture = errors.New("you cannot post without a picture")
	ErrMissingTitle   = errors.New("you cannot post without a title")
	ErrInFlight       = errors.New("a submission is already in flight")
)

const nodeType = "blog"

// Backend covers the two backend calls a submission makes, in order.
type Backend interface {
	CreateFile(ctx context.Context, file drupal.FileUpload) (*drupal.FileResponse, error)
	CreateNode(ctx context.Context, node drupal.Node) (*drupal.NodeResponse, error)
}

// SessionSource yields the current backend session.
type SessionSource interface {
	Current() domain.Session
}

// PictureSource yields the pending picture in its normalized form.
type PictureSource interface {
	EncodedPayload(ctx context.Context) (string, error)
	Filename() string
	Reset()
}

// LocationSource yields the current location draft.
type LocationSource interface {
	Draft() domain.LocationDraft
}

// Form is the text portion of the post being composed. Clear is invoked
// after a successful submission.
type Form interface {
	Title() string
	Body() string
	Clear()
}

// Coordinator runs the submission state machine
// Idle -> Gated -> Validating -> Uploading -> Creating -> Done | Failed.
// At most one submission is in flight at a time; a second Submit while
// one runs fails locally with ErrInFlight.
type Coordinator struct {
	sessions  SessionSource
	pictures  PictureSource
	locations LocationSource
	form      Form
	backend   Backend
	engine    *policy.Engine
	notifier  device.Notifier

	// RequireLogin, when set, is invoked after the not-logged-in notice to
	// send the user to the login screen.
	RequireLogin func()

	slot *semaphore.Weighted

	mu    sync.Mutex
	state domain.SubmissionState
}

// NewCoordinator wires a coordinator from its collaborators.
func NewCoordinator(sessions SessionSource, pictures PictureSource, locations LocationSource, form Form, backend Backend, engine *policy.Engine, notifier device.Notifier) *Coordinator {
	return &Coordinator{
		sessions:  sessions,
		pictures:  pictures,
		locations: locations,
		form:      form,
		backend:   backend,
		engine:    engine,
		notifier:  notifier,
		slot:      semaphore.NewWeighted(1),
		state:     domain.SubmissionIdle,
	}
}

// State returns the coordinator's current state.
func (c *Coordinator) State() domain.SubmissionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Coordinator) setState(s domain.SubmissionState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Submit runs one submission attempt and returns the new node identifier
// on success. Precondition failures return one of the sentinel errors
// above after notifying the user; backend failures return the backend
// error after notifying the user. Either way the coordinator is ready for
// the next attempt when Submit returns.
func (c *Coordinator) Submit(ctx context.Context) (string, error) {
	if !c.slot.TryAcquire(1) {
		return "", ErrInFlight
	}
	defer c.slot.Release(1)

	nid, err := c.run(ctx)
	if err != nil {
		c.setState(domain.SubmissionFailed)
	} else {
		c.setState(domain.SubmissionDone)
	}
	// Terminal states are momentary; the machine is immediately ready again.
	c.setState(domain.SubmissionIdle)
	return nid, err
}

func (c *Coordinator) run(ctx context.Context) (string, error) {
	c.setState(domain.SubmissionGated)
	sess := c.sessions.Current()

	payload, err := c.pictures.EncodedPayload(ctx)
	if err != nil {
		log.Printf("WARN: picture payload unavailable: %v", err)
		payload = picture.EmptyPayload
	}
	title := c.form.Title()

	c.setState(domain.SubmissionValidating)
	decision, reason, err := c.engine.Evaluate(ctx, policy.Input{
		UID:        sess.User.UID,
		HasPicture: payload != picture.EmptyPayload,
		HasTitle:   title != "",
	})
	if err != nil {
		return "", fmt.Errorf("failed to evaluate submission policy: %w", err)
	}
	if decision != policy.DecisionAllow {
		return "", c.deny(reason)
	}

	draft := domain.PostDraft{
		Title:    title,
		Body:     c.form.Body(),
		Filename: c.pictures.Filename(),
		Payload:  picture.Base64Content(payload),
		Location: c.locations.Draft(),
	}

	// The busy indicator brackets the whole upload+create span.
	c.notifier.Loading(true)
	defer c.notifier.Loading(false)

	c.setState(domain.SubmissionUploading)
	fileResp, err := c.backend.CreateFile(ctx, drupal.FileUpload{
		Filename: draft.Filename,
		File:     draft.Payload,
		UID:      sess.User.UID,
	})
	if err != nil {
		c.notifier.Vibrate(250 * time.Millisecond)
		c.notifier.Alert("Upload Failed", err.Error())
		return "", err
	}

	c.setState(domain.SubmissionCreating)
	nodeResp, err := c.backend.CreateNode(ctx, drupal.Node{
		UID:         sess.User.UID,
		Name:        sess.User.Name,
		Title:       draft.Title,
		Body:        draft.Body,
		Type:        nodeType,
		FieldImages: []drupal.FileRef{{FID: fileResp.FID}},
		Locations: []drupal.NodeLocation{{
			Street:     draft.Location.Street,
			City:       draft.Location.City,
			Province:   draft.Location.Province,
			PostalCode: draft.Location.PostalCode,
			Latitude:   draft.Location.LatitudeString(),
			Longitude:  draft.Location.LongitudeString(),
		}},
	})
	if err != nil {
		c.notifier.Vibrate(250 * time.Millisecond)
		c.notifier.Alert("Post Failed", err.Error())
		return "", err
	}

	c.form.Clear()
	c.pictures.Reset()
	c.notifier.Vibrate(250 * time.Millisecond)
	c.notifier.Alert("Drupal", "New post created with nid "+nodeResp.NID)
	return nodeResp.NID, nil
}

// deny turns a policy denial into its notice and sentinel error. No
// backend call has been made at this point.
func (c *Coordinator) deny(reason string) error {
	switch reason {
	case policy.ReasonNotLoggedIn:
		c.notifier.Vibrate(500 * time.Millisecond)
		c.notifier.Alert("Drupal", "You need to login before posting picture.")
		if c.RequireLogin != nil {
			c.RequireLogin()
		}
		return ErrNotLoggedIn
	case policy.ReasonMissingPicture:
		c.notifier.Vibrate(250 * time.Millisecond)
		c.notifier.Alert("Missing Picture", "You cannot post without a picture.")
		return ErrMissingPicture
	case policy.ReasonMissingTitle:
		c.notifier.Vibrate(250 * time.Millisecond)
		c.notifier.Alert("Missing Title", "You cannot post without a title.")
		return ErrMissingTitle
	default:
		return fmt.Errorf("submission denied: %s", reason)
	}
}
