package checker

import (
	"context"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// numberLayout renders the test phone number as YYYYMMDDHHmmss.
const numberLayout = "20060102150405"

// Identity is the unique name/number pair typed into the form so the
// resulting email can be traced back to one deployment and one run.
type Identity struct {
	Hash   string
	Name   string
	Number string
}

// IdentitySource supplies the inputs DeriveIdentity looks at.
// Fields left nil fall back to the process environment, git and the wall clock.
type IdentitySource struct {
	Getenv  func(string) string
	GitHead func(ctx context.Context) (string, error)
	Now     func() time.Time
}

// DeriveIdentity picks the build hash from VERCEL_DEPLOYMENT_ID (first 8 characters),
// then the short git revision, then a base36 millisecond timestamp.
// POST: Name is "test-<hash>", Number is the local time as YYYYMMDDHHmmss
func DeriveIdentity(ctx context.Context, src IdentitySource) Identity {
	if src.Getenv == nil {
		src.Getenv = os.Getenv
	}
	if src.GitHead == nil {
		src.GitHead = gitShortHead
	}
	if src.Now == nil {
		src.Now = time.Now
	}
	now := src.Now()

	hash := buildHash(ctx, src, now)
	return Identity{
		Hash:   hash,
		Name:   "test-" + hash,
		Number: now.Format(numberLayout),
	}
}

func buildHash(ctx context.Context, src IdentitySource, now time.Time) string {
	if id := strings.TrimSpace(src.Getenv("VERCEL_DEPLOYMENT_ID")); id != "" {
		if len(id) > 8 {
			id = id[:8]
		}
		return id
	}
	if head, err := src.GitHead(ctx); err == nil && head != "" {
		return head
	}
	return strconv.FormatInt(now.UnixMilli(), 36)
}

func gitShortHead(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, "git", "rev-parse", "--short", "HEAD").Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
