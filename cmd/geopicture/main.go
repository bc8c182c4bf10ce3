// Command geopicture is a terminal rendition of the field-reporting
// client: take a picture, resolve the location, post it to the backend.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/christianyates/DrupalGeoPicture/internal/config"
	"github.com/christianyates/DrupalGeoPicture/internal/device"
	"github.com/christianyates/DrupalGeoPicture/internal/domain"
	"github.com/christianyates/DrupalGeoPicture/internal/drupal"
	"github.com/christianyates/DrupalGeoPicture/internal/fieldcache"
	"github.com/christianyates/DrupalGeoPicture/internal/geocode"
	"github.com/christianyates/DrupalGeoPicture/internal/location"
	"github.com/christianyates/DrupalGeoPicture/internal/picture"
	"github.com/christianyates/DrupalGeoPicture/internal/policy"
	"github.com/christianyates/DrupalGeoPicture/internal/session"
	"github.com/christianyates/DrupalGeoPicture/internal/submit"
)

// app ties the interactive pieces together and doubles as the post form.
type app struct {
	sessions  *session.Client
	resolver  *location.Resolver
	pictures  *picture.Acquirer
	coord     *submit.Coordinator
	nameField *fieldcache.Field

	title string
	body  string
}

func (a *app) Title() string { return a.title }
func (a *app) Body() string  { return a.body }
func (a *app) Clear() {
	a.title = ""
	a.body = ""
}

func main() {
	// A missing .env file is fine; the environment still applies.
	_ = godotenv.Load()

	cfg := config.Load()
	log.SetFlags(log.Ltime)

	fields, err := fieldcache.NewStore(cfg.FieldsDB)
	if err != nil {
		log.Fatalf("Failed to open field cache: %v", err)
	}
	defer fields.Close()

	baseField := fieldcache.NewField(fields, "base_url")
	if baseField.Value() == "" {
		baseField.Set(cfg.BaseURL)
	}
	nameField := fieldcache.NewField(fields, "name")

	api := drupal.NewClient(baseField.Value(), cfg.HTTPTimeout)
	sessions := session.NewClient(api)
	sessions.OnLogin(func(user domain.User) {
		fmt.Printf("Logged in as %s (uid %d)\n", user.Name, user.UID)
	})
	sessions.OnLogout(func() {
		fmt.Println("Logged out")
	})

	var geocoder location.Geocoder
	if cfg.GeocoderURL != "" {
		geocoder = geocode.NewClient(cfg.GeocoderURL, cfg.HTTPTimeout)
	}
	resolver := location.NewResolver(&device.FixedLocator{Lat: cfg.DeviceLat, Lng: cfg.DeviceLng}, geocoder)

	pictures := picture.NewAcquirer(device.NewSpoolCamera(cfg.CameraDir))

	ctx := context.Background()
	engine, err := policy.NewEngine(ctx, policy.SubmissionPolicy)
	if err != nil {
		log.Fatalf("Failed to initialize policy engine: %v", err)
	}

	a := &app{
		sessions:  sessions,
		resolver:  resolver,
		pictures:  pictures,
		nameField: nameField,
	}
	notifier := device.NewTerminalNotifier()
	coord := submit.NewCoordinator(sessions, pictures, resolver, a, api, engine, notifier)
	coord.RequireLogin = func() {
		fmt.Println("Use /login <name> <pass> first.")
	}
	a.coord = coord

	fmt.Printf("Connecting to %s...\n", baseField.Value())
	if err := sessions.Initialize(ctx); err != nil {
		log.Printf("WARN: connect failed: %v", err)
	}

	fmt.Println("Type /help for commands.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if !a.handle(ctx, input) {
			return
		}
	}
}

// handle runs one command. It returns false when the loop should exit.
func (a *app) handle(ctx context.Context, input string) bool {
	cmd, rest, _ := strings.Cut(input, " ")
	rest = strings.TrimSpace(rest)

	switch cmd {
	case "/help":
		printHelp()

	case "/login":
		name, pass, ok := strings.Cut(rest, " ")
		if !ok {
			fmt.Println("Usage: /login <name> <pass>")
			return true
		}
		if err := a.sessions.Login(ctx, name, pass); err != nil {
			fmt.Printf("Login failed: %v\n", err)
			return true
		}
		a.nameField.Set(name)

	case "/logout":
		a.sessions.Logout(ctx)

	case "/refresh":
		if err := a.resolver.Refresh(ctx); err != nil {
			fmt.Printf("Location refresh failed: %v\n", err)
			return true
		}
		fmt.Printf("Location: %s\n", a.resolver.Summary())

	case "/camera":
		if err := a.pictures.FromCamera(ctx); err != nil {
			fmt.Printf("Camera failed: %v\n", err)
			return true
		}
		a.shrink(ctx)
		fmt.Printf("Picture: %s\n", a.pictures.Filename())

	case "/picture":
		if rest == "" {
			fmt.Println("Usage: /picture <path>")
			return true
		}
		if err := a.pictures.FromFile(device.NewFileEntry(rest)); err != nil {
			fmt.Printf("Picture rejected: %v\n", err)
			return true
		}
		a.shrink(ctx)
		fmt.Printf("Picture: %s\n", a.pictures.Filename())

	case "/title":
		a.title = rest

	case "/body":
		a.body = rest

	case "/show":
		a.show()

	case "/post":
		nid, err := a.coord.Submit(ctx)
		if err != nil {
			fmt.Printf("Post failed: %v\n", err)
			return true
		}
		fmt.Printf("Posted node %s\n", nid)

	case "/quit":
		fmt.Println("Bye!")
		return false

	default:
		fmt.Printf("Unknown command: %s\n", cmd)
	}
	return true
}

// shrink downscales oversized pictures before upload. Failures keep the
// original picture.
func (a *app) shrink(ctx context.Context) {
	if err := a.pictures.Downscale(ctx); err != nil {
		log.Printf("WARN: downscale failed: %v", err)
	}
}

func (a *app) show() {
	sess := a.sessions.Current()
	if sess.Authenticated() {
		fmt.Printf("User:     %s (uid %d)\n", sess.User.Name, sess.User.UID)
	} else {
		fmt.Println("User:     anonymous")
	}
	if a.pictures.HasPicture() {
		fmt.Printf("Picture:  %s\n", a.pictures.Filename())
	} else {
		fmt.Println("Picture:  none")
	}
	fmt.Printf("Title:    %s\n", a.title)
	fmt.Printf("Body:     %s\n", a.body)
	fmt.Printf("Location: %s\n", a.resolver.Summary())
}

func printHelp() {
	fmt.Println(`Commands:
  /login <name> <pass>  log in to the backend
  /logout               end the session
  /refresh              refresh location and address
  /camera               take a picture with the camera
  /picture <path>       pick a picture file
  /title <text>         set the post title
  /body <text>          set the post body
  /show                 show the current draft
  /post                 submit the post
  /quit                 exit`)
}
