package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/GTDGit/panel_api/internal/utils"
)

// Locker gives mutual exclusion over entity keys for the duration of a
// status read-modify-write.
type Locker interface {
	Lock(ctx context.Context, keys ...string) (unlock func(), err error)
}

func testerKey(id string) string       { return "tester:" + id }
func productKey(id string) string      { return "product:" + id }
func manufacturerKey(id string) string { return "manufacturer:" + id }

// maxLockRounds bounds how often lockStable retries when the key set keeps
// growing under it.
const maxLockRounds = 5

// lockStable locks the keys computed by keys. The set is computed again
// under the lock; when it grew in between (a test was created after the
// first read) the lock is dropped and the round repeated.
func lockStable(ctx context.Context, locker Locker, keys func(ctx context.Context) ([]string, error)) (func(), error) {
	for round := 0; round < maxLockRounds; round++ {
		want, err := keys(ctx)
		if err != nil {
			return nil, err
		}
		unlock, err := locker.Lock(ctx, want...)
		if err != nil {
			return nil, err
		}
		got, err := keys(ctx)
		if err != nil {
			unlock()
			return nil, err
		}
		if covers(want, got) {
			return unlock, nil
		}
		unlock()
	}
	return nil, utils.Conflict("dependent tests kept changing; try again")
}

// covers reports whether every key in need is in held.
func covers(held, need []string) bool {
	set := make(map[string]bool, len(held))
	for _, k := range held {
		set[k] = true
	}
	for _, k := range need {
		if !set[k] {
			return false
		}
	}
	return true
}

// DeletePolicy decides what happens to an entity's children on delete.
type DeletePolicy string

const (
	// DeleteStrict refuses to delete while dependents exist.
	DeleteStrict DeletePolicy = "strict"
	// DeleteCascade removes dependents together with the entity.
	DeleteCascade DeletePolicy = "cascade"
)

// ParseDeletePolicy validates a configured policy name.
func ParseDeletePolicy(s string) (DeletePolicy, error) {
	switch p := DeletePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case DeleteStrict, DeleteCascade:
		return p, nil
	default:
		return "", fmt.Errorf("unknown delete policy %q", s)
	}
}

// notFound maps sql.ErrNoRows to a NotFound error and passes others through.
func notFound(err error, format string, args ...interface{}) error {
	if errors.Is(err, sql.ErrNoRows) {
		return utils.NotFound(format, args...)
	}
	return err
}

// clean trims s and returns nil for blank input.
func clean(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// utcNow is the default clock of every service.
func utcNow() time.Time {
	return time.Now().UTC()
}
