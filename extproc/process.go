package extproc

import (
	"bufio"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

// Process is a lifecycle-managed external tool subprocess implementing
// Channel over its stdin/stdout pipes. One process serves one document at a
// time; concurrent documents each start their own process.
type Process struct {
	cmd   *exec.Cmd
	stdin io.Closer
	w     *bufio.Writer
	r     *bufio.Reader

	closed bool
}

// Compile time assert that Process implements the Channel interface.
var _ Channel = (*Process)(nil)

// Start launches the tool binary and wires its pipes. encodingName is the
// model-declared text encoding by IANA name (e.g. "ISO-8859-1"); empty or
// "UTF-8" means no translation. The subprocess inherits stderr so tool
// diagnostics stay visible.
func Start(name string, args []string, encodingName string) (*Process, error) {
	enc, err := resolveEncoding(encodingName)
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(name, args...)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, errors.Wrap(err, "failed to open stdin pipe")
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.Wrap(err, "failed to open stdout pipe")
	}
	if err := cmd.Start(); err != nil {
		return nil, errors.Wrapf(err, "failed to start %s", name)
	}

	var w io.Writer = stdin
	var r io.Reader = stdout
	if enc != nil {
		w = transform.NewWriter(stdin, enc.NewEncoder())
		r = transform.NewReader(stdout, enc.NewDecoder())
	}
	return &Process{
		cmd:   cmd,
		stdin: stdin,
		w:     bufio.NewWriter(w),
		r:     bufio.NewReader(r),
	}, nil
}

func resolveEncoding(name string) (encoding.Encoding, error) {
	if name == "" || strings.EqualFold(name, "UTF-8") {
		return nil, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve encoding %q", name)
	}
	if enc == nil {
		// ianaindex knows the name but has no decoder for it.
		return nil, errors.Errorf("encoding %q is not supported", name)
	}
	return enc, nil
}

// Send implements Channel. The sentence is flushed immediately so the peer
// can begin producing output without waiting for subsequent sentences.
func (p *Process) Send(tokens []string) error {
	for _, tok := range tokens {
		if _, err := p.w.WriteString(tok); err != nil {
			return errors.Wrap(err, "failed to write token")
		}
		if err := p.w.WriteByte('\n'); err != nil {
			return errors.Wrap(err, "failed to write token")
		}
	}
	if err := p.w.WriteByte('\n'); err != nil {
		return errors.Wrap(err, "failed to write sentence terminator")
	}
	if err := p.w.Flush(); err != nil {
		return errors.Wrap(err, "failed to flush sentence")
	}
	return nil
}

// Receive implements Channel.
func (p *Process) Receive(n int) ([]string, error) {
	lines := make([]string, 0, n)
	for i := 0; i < n; i++ {
		line, err := p.readLine()
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read response line %d of %d", i+1, n)
		}
		if line == "" {
			// Sentence terminator arrived before all tag lines.
			return nil, &ProtocolError{Want: n, Got: i}
		}
		lines = append(lines, line)
	}

	term, err := p.readLine()
	if err == io.EOF {
		return lines, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read sentence terminator")
	}
	if term != "" {
		return nil, &ProtocolError{Want: n, Got: n + 1, Line: term}
	}
	return lines, nil
}

func (p *Process) readLine() (string, error) {
	line, err := p.r.ReadString('\n')
	if err != nil {
		if err == io.EOF && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Close implements Channel: it closes the tool's stdin, kills the process if
// it is still running, and reaps it. Close is idempotent and must be called
// regardless of success or failure.
func (p *Process) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true

	err := p.stdin.Close()
	if p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
	if waitErr := p.cmd.Wait(); err == nil {
		// The tool exits nonzero when killed; that is the expected path.
		var exitErr *exec.ExitError
		if waitErr != nil && !errors.As(waitErr, &exitErr) {
			err = waitErr
		}
	}
	return err
}
