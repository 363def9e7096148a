package agent

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recordingCompleter struct {
	out  string
	seen chan string
}

func (r *recordingCompleter) Complete(_ context.Context, _ string, prompt string) (string, error) {
	r.seen <- prompt
	return r.out, nil
}

func TestSafetyJudge_Review(t *testing.T) {
	rc := &recordingCompleter{out: "SAFE", seen: make(chan string, 1)}
	judge := NewSafetyJudge(rc, nil)

	judge.Review("t1", "Chào bạn!")

	select {
	case prompt := <-rc.seen:
		assert.Equal(t, "Chào bạn!", prompt)
	case <-time.After(2 * time.Second):
		t.Fatal("judge never invoked the completer")
	}
}

func TestSafetyJudge_Disabled(t *testing.T) {
	// Nil judge and nil completer are both no-ops.
	var nilJudge *SafetyJudge
	nilJudge.Review("t1", "Chào bạn!")

	judge := NewSafetyJudge(nil, nil)
	judge.Review("t1", "Chào bạn!")
}

func TestSafetyJudge_SkipsEmptyAnswer(t *testing.T) {
	rc := &recordingCompleter{out: "SAFE", seen: make(chan string, 1)}
	judge := NewSafetyJudge(rc, nil)

	judge.Review("t1", "   ")

	select {
	case <-rc.seen:
		t.Fatal("empty answers must not be judged")
	case <-time.After(50 * time.Millisecond):
	}
}
