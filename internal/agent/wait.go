package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/droidcli/droidcli/internal/ref"
)

const (
	// DefaultWaitTimeout bounds how long the wait helpers poll.
	DefaultWaitTimeout = 10 * time.Second
	waitPollInterval   = 500 * time.Millisecond
)

// WaitForElement polls fresh snapshots until an element matching the
// criteria appears, returning its descriptor. The returned ref is valid
// against the snapshot current at the time of the match.
func (a *Agent) WaitForElement(ctx context.Context, deviceID string, criteria ref.Criteria, timeout time.Duration) (ref.ElementDescriptor, error) {
	var match ref.ElementDescriptor
	err := a.pollUntil(ctx, timeout, func() (bool, error) {
		snap, err := a.CaptureSnapshot(ctx, deviceID)
		if err != nil {
			return false, err
		}
		if found := snap.Find(criteria); len(found) > 0 {
			match = *found[0]
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		return ref.ElementDescriptor{}, err
	}
	return match, nil
}

// WaitForElementGone polls fresh snapshots until no element matches the
// criteria.
func (a *Agent) WaitForElementGone(ctx context.Context, deviceID string, criteria ref.Criteria, timeout time.Duration) error {
	return a.pollUntil(ctx, timeout, func() (bool, error) {
		snap, err := a.CaptureSnapshot(ctx, deviceID)
		if err != nil {
			return false, err
		}
		return len(snap.Find(criteria)) == 0, nil
	})
}

// WaitForActivity polls the foreground app until the given package (and
// optionally activity) is in front.
func (a *Agent) WaitForActivity(ctx context.Context, deviceID, pkg, activity string, timeout time.Duration) error {
	return a.pollUntil(ctx, timeout, func() (bool, error) {
		curPkg, curActivity, err := a.CurrentApp(ctx, deviceID)
		if err != nil {
			return false, err
		}
		if curPkg != pkg {
			return false, nil
		}
		return activity == "" || curActivity == activity, nil
	})
}

// pollUntil runs check every waitPollInterval until it reports done, the
// timeout elapses, or the context is cancelled. Check errors abort the wait
// immediately so a lost connection is not retried for the full timeout.
func (a *Agent) pollUntil(ctx context.Context, timeout time.Duration, check func() (bool, error)) error {
	if timeout <= 0 {
		timeout = DefaultWaitTimeout
	}
	deadline := time.Now().Add(timeout)
	for {
		done, err := check()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("condition not met within %s", timeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitPollInterval):
		}
	}
}
