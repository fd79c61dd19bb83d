package enginetest

import "fmt"

// ScriptedPrompter answers confirmations from a queue, falling back to the
// prompt's default once the queue is empty. It satisfies tui.Prompter.
type ScriptedPrompter struct {
	Answers   []bool
	Selection string
	Err       error
	Messages  []string
}

// NewScriptedPrompter queues the given answers
func NewScriptedPrompter(answers ...bool) *ScriptedPrompter {
	return &ScriptedPrompter{Answers: answers}
}

func (p *ScriptedPrompter) Confirm(message string, def bool) (bool, error) {
	p.Messages = append(p.Messages, message)
	if p.Err != nil {
		return false, p.Err
	}
	if len(p.Answers) == 0 {
		return def, nil
	}
	answer := p.Answers[0]
	p.Answers = p.Answers[1:]
	return answer, nil
}

func (p *ScriptedPrompter) SelectBranch(title string, options []string, _ string) (string, error) {
	p.Messages = append(p.Messages, title)
	if p.Err != nil {
		return "", p.Err
	}
	for _, option := range options {
		if option == p.Selection {
			return option, nil
		}
	}
	return "", fmt.Errorf("%s: %q is not an option", title, p.Selection)
}
