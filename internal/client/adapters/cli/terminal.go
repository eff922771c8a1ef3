package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"golang.org/x/term"

	"notedesk/internal/client/domain/entities"
	"notedesk/internal/client/ports/presenter"
)

const placeholderNoNotes = "no files"

// Terminal показывает состояние клиента в терминале.
// Уведомления и вопросы пишутся в errOut, данные - в out.
type Terminal struct {
	in        *bufio.Reader
	inFile    *os.File
	out       io.Writer
	errOut    io.Writer
	assumeYes bool
}

var _ presenter.Presenter = (*Terminal)(nil)

func NewTerminal(in io.Reader, out, errOut io.Writer) *Terminal {
	t := &Terminal{
		in:     bufio.NewReader(in),
		out:    out,
		errOut: errOut,
	}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		t.inFile = f
	}
	return t
}

// AssumeYes заставляет все диалоги подтверждения отвечать "да".
func (t *Terminal) AssumeYes(yes bool) {
	t.assumeYes = yes
}

func (t *Terminal) ShowConfig(_ context.Context, endpoint string) error {
	if endpoint == "" {
		_, err := fmt.Fprintln(t.errOut, `not connected, run "notedesk login <server-url>"`)
		return err
	}
	_, err := fmt.Fprintf(t.errOut, "not connected to %s\n", endpoint)
	return err
}

func (t *Terminal) ShowNotes(_ context.Context, notes []entities.Note, current *entities.Note) error {
	if len(notes) == 0 {
		_, err := fmt.Fprintln(t.out, placeholderNoNotes)
		return err
	}

	w := tabwriter.NewWriter(t.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\tTITLE\tTIME\tID")
	for _, n := range notes {
		mark := ""
		if current != nil && current.ID != "" && current.ID == n.ID {
			mark = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", mark, oneLine(n.Title), n.Time, n.ID)
	}
	return w.Flush()
}

func (t *Terminal) ShowEditor(_ context.Context, note *entities.Note) error {
	if note == nil {
		_, err := fmt.Fprintln(t.errOut, "new note")
		return err
	}
	_, err := fmt.Fprintf(t.out, "# %s\n%s  id=%s\n\n%s\n", note.Title, note.Time, note.ID, note.Content)
	return err
}

// ShowModal спрашивает y/N. Конец ввода означает отказ.
func (t *Terminal) ShowModal(_ context.Context, modal presenter.Modal) (presenter.Decision, error) {
	if t.assumeYes {
		return presenter.DecisionConfirm, nil
	}

	if _, err := fmt.Fprintf(t.errOut, "%s [y/N]: ", modal.Message); err != nil {
		return presenter.DecisionCancel, err
	}
	answer, err := t.readLine()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return presenter.DecisionCancel, nil
		}
		return presenter.DecisionCancel, err
	}

	switch strings.ToLower(answer) {
	case "y", "yes":
		return presenter.DecisionConfirm, nil
	default:
		return presenter.DecisionCancel, nil
	}
}

func (t *Terminal) Notify(_ context.Context, notice presenter.Notice) error {
	prefix := ""
	if notice.Level == presenter.NoticeError {
		prefix = "error: "
	}
	_, err := fmt.Fprintln(t.errOut, prefix+notice.Message)
	return err
}

// Prompt спрашивает строку. Для secret ввод на терминале не отображается.
func (t *Terminal) Prompt(label string, secret bool) (string, error) {
	if _, err := fmt.Fprintf(t.errOut, "%s: ", label); err != nil {
		return "", err
	}

	if secret && t.inFile != nil {
		raw, err := term.ReadPassword(int(t.inFile.Fd()))
		fmt.Fprintln(t.errOut)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", label, err)
		}
		return strings.TrimSpace(string(raw)), nil
	}

	line, err := t.readLine()
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read %s: %w", label, err)
	}
	return line, nil
}

func (t *Terminal) readLine() (string, error) {
	line, err := t.in.ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	if err != nil && line != "" && errors.Is(err, io.EOF) {
		return line, nil
	}
	return line, err
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
