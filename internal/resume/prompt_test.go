package resume

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/pot-code/learning-engine/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var candidate = Candidate{SectionID: "s2", LectureID: "l4", VideoURL: "l4.mp4", LastViewedAt: "01:00:01", ProgressPercentage: 30}

func TestPromptConfirm(t *testing.T) {
	p := NewPrompt(candidate, 0, nil)

	sel, err := p.Confirm()
	require.NoError(t, err)
	assert.Equal(t, 3601.0, sel.StartTime)
	assert.Equal(t, "l4", sel.LectureID)
	assert.Equal(t, PromptConfirmed, p.State())

	_, err = p.Confirm()
	assert.ErrorIs(t, err, domain.ErrNoPendingPrompt)
	assert.ErrorIs(t, p.Decline(), domain.ErrNoPendingPrompt)
}

func TestPromptDecline(t *testing.T) {
	p := NewPrompt(candidate, 0, nil)
	require.NoError(t, p.Decline())
	assert.Equal(t, PromptDeclined, p.State())

	_, err := p.Confirm()
	assert.ErrorIs(t, err, domain.ErrNoPendingPrompt)
}

func TestPromptExpiresByDismissing(t *testing.T) {
	var expired int32
	p := NewPrompt(candidate, 5*time.Millisecond, func(*Prompt) {
		atomic.AddInt32(&expired, 1)
	})

	require.Eventually(t, func() bool {
		return p.State() == PromptExpired
	}, time.Second, time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&expired))

	_, err := p.Confirm()
	assert.ErrorIs(t, err, domain.ErrNoPendingPrompt)
}

func TestPromptAnsweredBeforeExpiry(t *testing.T) {
	var expired int32
	p := NewPrompt(candidate, 20*time.Millisecond, func(*Prompt) {
		atomic.AddInt32(&expired, 1)
	})
	require.NoError(t, p.Decline())

	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, PromptDeclined, p.State())
	assert.Zero(t, atomic.LoadInt32(&expired))
}

func TestPromptNeverExpiresWithoutTTL(t *testing.T) {
	p := NewPrompt(candidate, 0, nil)
	defer p.Close()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, PromptPending, p.State())
}
