package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/wippyai/faultkit/dispatch"
	"github.com/wippyai/faultkit/errors"
	"github.com/wippyai/faultkit/taxonomy"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	kindStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

const maxHistory = 8

func newInteractiveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "interactive",
		Short: "Type failure messages and watch them being dispatched",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runInteractive(cmd)
		},
	}
}

func (a *app) runInteractive(cmd *cobra.Command) error {
	if !isTerminal() {
		return errors.InvalidInput(errors.PhaseConfig, "interactive mode needs a terminal")
	}

	reg, err := a.registry()
	if err != nil {
		return err
	}
	classifier, err := a.cfg.Classifier()
	if err != nil {
		return err
	}

	p := tea.NewProgram(newInteractiveModel(cmd.Context(), reg, classifier))
	_, err = p.Run()
	return err
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

type outcome struct {
	message string
	kind    errors.Kind
	result  string
	err     error
}

type interactiveModel struct {
	ctx        context.Context
	reg        *dispatch.Registry
	classifier *taxonomy.Classifier
	history    []outcome
	input      textinput.Model
}

func newInteractiveModel(ctx context.Context, reg *dispatch.Registry, classifier *taxonomy.Classifier) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "x is not defined"
	ti.Prompt = "failure: "
	ti.Width = 60
	ti.Focus()

	return &interactiveModel{
		ctx:        ctx,
		reg:        reg,
		classifier: classifier,
		input:      ti,
	}
}

type dispatchedMsg outcome

func (m *interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "enter":
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			m.input.Reset()
			return m, m.dispatch(text)
		}

	case dispatchedMsg:
		m.history = append([]outcome{outcome(msg)}, m.history...)
		if len(m.history) > maxHistory {
			m.history = m.history[:maxHistory]
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// dispatch runs work failing with text through the registry.
func (m *interactiveModel) dispatch(text string) tea.Cmd {
	return func() tea.Msg {
		res, err := dispatch.Run(m.ctx, m.reg, func(context.Context) (any, error) {
			return nil, stderrors.New(text)
		}, nil, dispatch.WithClassifier(m.classifier))

		o := outcome{message: text, err: err}
		var fe *dispatch.FailureError
		switch {
		case stderrors.As(err, &fe):
			o.kind = fe.Record.Kind()
		case res.Record != nil:
			o.kind = res.Record.Kind()
			o.result = describeResult(res)
		default:
			o.kind = m.classifier.ClassifyMessage(text)
		}
		return dispatchedMsg(o)
	}
}

func describeResult(res dispatch.Result) string {
	if res.Value == nil {
		return "handled"
	}
	return fmt.Sprintf("recovered with %v", res.Value)
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("faultkit"))
	b.WriteString(" registry ")
	b.WriteString(m.reg.Name())
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	for _, o := range m.history {
		b.WriteString(kindStyle.Render(fmt.Sprintf("%-22s", o.kind)))
		b.WriteString(" ")
		b.WriteString(o.message)
		b.WriteString("\n  ")
		if o.err != nil {
			b.WriteString(errorStyle.Render("repropagated: " + o.err.Error()))
		} else {
			b.WriteString(resultStyle.Render(o.result))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter dispatch • esc quit"))
	return b.String()
}
