package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeModel struct {
	text    string
	err     error
	block   bool
	history []Message
}

func (f *fakeModel) GenerateDescription(ctx context.Context, title, category, features string) (string, error) {
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.text, f.err
}

func (f *fakeModel) Chat(ctx context.Context, history []Message, message string) (string, error) {
	f.history = history
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.text, f.err
}

func TestService_Offline(t *testing.T) {
	s := NewService(nil, 0, nil)
	assert.False(t, s.Online())

	r := s.Chat(context.Background(), nil, "hi")
	assert.Equal(t, Reply{Text: OfflineText, Fallback: true}, r)

	r = s.Describe(context.Background(), "Lamp", "Home & Lifestyle", "bright")
	assert.Equal(t, Reply{Text: DescriptionFailedText, Fallback: true}, r)
}

func TestService_PassesThroughModelOutput(t *testing.T) {
	m := &fakeModel{text: "A lovely lamp."}
	s := NewService(m, time.Second, nil)
	require.True(t, s.Online())

	assert.Equal(t, Reply{Text: "A lovely lamp."}, s.Describe(context.Background(), "Lamp", "Home & Lifestyle", ""))

	history := []Message{{Role: RoleUser, Text: "hello"}, {Role: RoleModel, Text: "hi!"}}
	assert.Equal(t, Reply{Text: "A lovely lamp."}, s.Chat(context.Background(), history, "lamps?"))
	assert.Equal(t, history, m.history)
}

func TestService_ErrorsDegrade(t *testing.T) {
	s := NewService(&fakeModel{err: errors.New("quota")}, time.Second, nil)

	r := s.Chat(context.Background(), nil, "hi")
	assert.True(t, r.Fallback)
	assert.Equal(t, ConnectionTroubleText, r.Text)

	r = s.Describe(context.Background(), "t", "c", "f")
	assert.True(t, r.Fallback)
	assert.Equal(t, DescriptionFailedText, r.Text)
}

func TestService_EmptyOutputDegrades(t *testing.T) {
	s := NewService(&fakeModel{}, time.Second, nil)
	assert.True(t, s.Chat(context.Background(), nil, "hi").Fallback)
}

func TestService_Timeout(t *testing.T) {
	s := NewService(&fakeModel{block: true}, 20*time.Millisecond, nil)
	start := time.Now()
	r := s.Chat(context.Background(), nil, "hi")
	assert.True(t, r.Fallback)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestNewGemini_MissingKey(t *testing.T) {
	_, err := NewGemini(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestDescriptionPrompt(t *testing.T) {
	p := descriptionPrompt("Smart Watch", "Electronic Devices", "GPS, 7 day battery")
	assert.Contains(t, p, "Product Title: Smart Watch")
	assert.Contains(t, p, "Category: Electronic Devices")
	assert.Contains(t, p, "Key Features: GPS, 7 day battery")
	assert.True(t, strings.Contains(p, "under 150 words"))
}

func TestChatContents_Roles(t *testing.T) {
	got := chatContents([]Message{
		{Role: RoleUser, Text: "a"},
		{Role: RoleModel, Text: "b"},
		{Role: "system", Text: "c"},
	}, "d")
	require.Len(t, got, 4)
	roles := make([]string, len(got))
	for i, c := range got {
		roles[i] = string(c.Role)
	}
	assert.Equal(t, []string{"user", "model", "user", "user"}, roles)
	assert.Equal(t, "d", got[3].Parts[0].Text)
	assert.IsType(t, &genai.Content{}, got[0])
}
