// Package clarify implements menu-based clarification prompts (C15):
// when a query is missing information to answer, Anna asks a concrete
// question with numbered options, each carrying an optional
// verification probe.
package clarify

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jjgarcianorway/anna-assistant-sub011/internal/inventory"
)

// KeyCancel and KeyOther are permanently reserved numeric keys: 0
// always cancels, 9 always lets the user type a free-form answer.
const (
	KeyCancel uint8 = 0
	KeyOther  uint8 = 9
)

// MenuOption is one numbered choice in a ClarifyPrompt.
type MenuOption struct {
	Key        uint8
	Label      string
	FactKey    string
	FactValue  string
	VerifyCmd  string
}

func NewOption(key uint8, label string) MenuOption {
	return MenuOption{Key: key, Label: label}
}

func (o MenuOption) WithFact(key, value string) MenuOption {
	o.FactKey, o.FactValue = key, value
	return o
}

func (o MenuOption) WithVerify(cmd string) MenuOption {
	o.VerifyCmd = cmd
	return o
}

func CancelOption() MenuOption { return NewOption(KeyCancel, "Cancel") }
func OtherOption() MenuOption  { return NewOption(KeyOther, "Other (specify)") }

// ClarifyPrompt is a menu-based question posed to the user.
type ClarifyPrompt struct {
	ID         string
	Title      string
	Question   string
	Options    []MenuOption
	DefaultKey *uint8
	Reason     string
}

// New builds a prompt pre-seeded with the mandatory Cancel/Other
// options.
func New(id, title, question string) ClarifyPrompt {
	return ClarifyPrompt{
		ID:       id,
		Title:    title,
		Question: question,
		Options:  []MenuOption{CancelOption(), OtherOption()},
	}
}

// WithOptions replaces the option list, then re-asserts the Cancel/
// Other escape options if the caller's list omitted them.
func (p ClarifyPrompt) WithOptions(opts []MenuOption) ClarifyPrompt {
	p.Options = opts
	p.ensureEscapeOptions()
	return p
}

func (p ClarifyPrompt) WithDefault(key uint8) ClarifyPrompt {
	p.DefaultKey = &key
	return p
}

func (p ClarifyPrompt) WithReason(reason string) ClarifyPrompt {
	p.Reason = reason
	return p
}

func (p *ClarifyPrompt) ensureEscapeOptions() {
	hasCancel, hasOther := false, false
	for _, o := range p.Options {
		if o.Key == KeyCancel {
			hasCancel = true
		}
		if o.Key == KeyOther {
			hasOther = true
		}
	}
	if !hasCancel {
		p.Options = append(p.Options, CancelOption())
	}
	if !hasOther {
		p.Options = append(p.Options, OtherOption())
	}
	sort.SliceStable(p.Options, func(i, j int) bool {
		return rankKey(p.Options[i].Key) < rankKey(p.Options[j].Key)
	})
}

func rankKey(key uint8) int {
	switch key {
	case KeyCancel:
		return 100
	case KeyOther:
		return 101
	default:
		return int(key)
	}
}

// GetOption looks up an option by its numeric key.
func (p ClarifyPrompt) GetOption(key uint8) (MenuOption, bool) {
	for _, o := range p.Options {
		if o.Key == key {
			return o, true
		}
	}
	return MenuOption{}, false
}

// FormatMenu renders the box-drawing menu exactly as the terminal
// shows it, with a trailing " ←" marker on the default option.
func (p ClarifyPrompt) FormatMenu() string {
	var b strings.Builder
	fmt.Fprintf(&b, "╭─ %s ─╮\n", p.Title)
	b.WriteString(p.Question)
	b.WriteString("\n\n")

	for _, o := range p.Options {
		marker := ""
		if p.DefaultKey != nil && *p.DefaultKey == o.Key {
			marker = " ←"
		}
		fmt.Fprintf(&b, "  [%d] %s%s\n", o.Key, o.Label, marker)
	}

	if p.Reason != "" {
		b.WriteString("\n  (")
		b.WriteString(p.Reason)
		b.WriteString(")\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

// OutcomeKind distinguishes the four ways a clarify interaction ends.
type OutcomeKind int

const (
	Answered OutcomeKind = iota
	Cancelled
	Other
	VerificationFailed
)

// Outcome is the result of presenting a ClarifyPrompt to the user.
type Outcome struct {
	Kind        OutcomeKind
	Key         uint8
	Label       string
	PromptID    string
	Text        string // Other
	Selected    string // VerificationFailed
	Reason      string // VerificationFailed
	Alternative string // VerificationFailed, may be empty
}

func (o Outcome) IsSuccess() bool {
	return o.Kind == Answered || o.Kind == Other
}

func (o Outcome) SelectedText() (string, bool) {
	switch o.Kind {
	case Answered:
		return o.Label, true
	case Other:
		return o.Text, true
	default:
		return "", false
	}
}

// editorCommands is the ordered candidate list for the editor-select
// prompt; each maps a binary name to its display label.
var editorCommands = []struct{ cmd, label string }{
	{"vim", "Vim"}, {"nvim", "Neovim"}, {"nano", "Nano"},
	{"emacs", "Emacs"}, {"code", "VS Code"}, {"micro", "Micro"},
}

// EditorMenuPrompt builds the "which editor do you prefer" prompt
// from the tools actually present in inv.
func EditorMenuPrompt(inv *inventory.Inventory) ClarifyPrompt {
	var opts []MenuOption
	key := uint8(1)
	for _, e := range editorCommands {
		if key >= KeyOther {
			break
		}
		if inv != nil && inv.Has(e.cmd) {
			opts = append(opts, NewOption(key, e.label).
				WithFact("preferred_editor", e.cmd).
				WithVerify("command -v "+e.cmd))
			key++
		}
	}

	return New("editor_select", "Editor Selection", "Which editor do you prefer?").
		WithOptions(opts).
		WithReason("I need to know your editor to configure it")
}

// editorAlternatives is the static substitution table consulted when
// a selected tool fails its verification probe.
var editorAlternatives = map[string][]string{
	"vim":   {"nvim", "vi", "nano"},
	"nvim":  {"vim", "vi", "nano"},
	"emacs": {"vim", "nano", "code"},
	"code":  {"vim", "nano", "nvim"},
	"nano":  {"vim", "micro", "vi"},
}

// FindInstalledAlternative returns the first installed alternative to
// tool, or "" if none of the known alternatives are present.
func FindInstalledAlternative(tool string, inv *inventory.Inventory) string {
	for _, alt := range editorAlternatives[tool] {
		if inv != nil && inv.Has(alt) {
			return alt
		}
	}
	return ""
}
