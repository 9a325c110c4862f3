package overlay

import (
	"io"
	"sync"

	"github.com/schollz/progressbar/v3"
)

// Terminal shows load progress as a spinner line on a terminal.
type Terminal struct {
	mu      sync.Mutex
	w       io.Writer
	bar     *progressbar.ProgressBar
	visible bool
	text    string
}

func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w}
}

func (t *Terminal) FadeIn() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.bar == nil {
		t.bar = progressbar.NewOptions(-1,
			progressbar.OptionSetWriter(t.w),
			progressbar.OptionSetDescription(describe(t.text)),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionClearOnFinish(),
		)
	}
	t.visible = true
}

func (t *Terminal) FadeOut() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.bar != nil {
		_ = t.bar.Finish()
		_ = t.bar.Clear()
		t.bar = nil
	}
	t.visible = false
}

func (t *Terminal) Visible() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.visible
}

func (t *Terminal) Text() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.text
}

func (t *Terminal) SetText(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.text = text
	if t.bar != nil {
		t.bar.Describe(describe(text))
		_ = t.bar.RenderBlank()
	}
}

func describe(text string) string {
	return "Loading assets " + text
}

// Silent keeps the presenter state without displaying anything.
type Silent struct {
	mu      sync.Mutex
	visible bool
	text    string
}

func NewSilent() *Silent {
	return &Silent{}
}

func (s *Silent) FadeIn() {
	s.mu.Lock()
	s.visible = true
	s.mu.Unlock()
}

func (s *Silent) FadeOut() {
	s.mu.Lock()
	s.visible = false
	s.mu.Unlock()
}

func (s *Silent) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

func (s *Silent) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text
}

func (s *Silent) SetText(text string) {
	s.mu.Lock()
	s.text = text
	s.mu.Unlock()
}
