// Command bookingcheck submits one test booking against a deployed site through a
// headless browser and exits 0 when the widget reports success, 1 otherwise.
//
// Usage:
//
//	bookingcheck [url]
//
// The URL defaults to TEST_URL, then to the production deployment.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"bookingrelay/internal/checker"
)

const defaultURL = "https://smokinbarrel.vercel.app"

func main() {
	_ = godotenv.Load()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	url := targetURL(args, os.Getenv)
	ctx := context.Background()
	id := checker.DeriveIdentity(ctx, checker.IdentitySource{})
	log.Printf("Testing booking form on %s (name=%s number=%s)", url, id.Name, id.Number)

	browser, err := checker.LaunchChromium()
	if err != nil {
		log.Printf("fatal: %v", err)
		return 1
	}

	res, err := checker.Run(ctx, browser, checker.Config{URL: url, Identity: id})
	switch {
	case err != nil:
		log.Printf("FAILED: %v", err)
	case !res.Passed:
		log.Printf("FAILED: button shows %q", res.Label)
	default:
		log.Printf("PASSED: button shows %q", res.Label)
		return 0
	}
	if res.Screenshot != "" {
		log.Printf("Screenshot saved to %s", res.Screenshot)
	}
	return 1
}

// targetURL picks the first argument, then TEST_URL, then the default deployment.
func targetURL(args []string, getenv func(string) string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	if u := getenv("TEST_URL"); u != "" {
		return u
	}
	return defaultURL
}
