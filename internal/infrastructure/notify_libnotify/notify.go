package notify_libnotify

import (
	"context"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/davarch/pipeline-bot/internal/domain"
)

var _ domain.Notifier = (*Notifier)(nil)

type Options struct {
	Urgency string
	Expire  time.Duration
}

// Notifier sends desktop notifications through notify-send. A soft
// notifier swallows delivery errors.
type Notifier struct {
	soft bool
	opt  Options
	bin  string
}

func New(opt Options) *Notifier     { return &Notifier{soft: false, opt: opt, bin: "notify-send"} }
func NewSoft(opt Options) *Notifier { return &Notifier{soft: true, opt: opt, bin: "notify-send"} }

func (n *Notifier) Notify(ctx context.Context, title, body, url string) error {
	cmd := exec.CommandContext(ctx, n.bin, n.args(title, body, url)...)
	if err := cmd.Run(); err != nil {
		if n.soft {
			return nil
		}
		return err
	}
	return nil
}

func (n *Notifier) args(title, body, url string) []string {
	if strings.TrimSpace(url) != "" {
		if body == "" {
			body = url
		} else {
			body = body + "\n" + url
		}
	}

	args := []string{"--app-name=pipeline-bot"}
	if n.opt.Urgency != "" {
		args = append(args, "--urgency="+n.opt.Urgency)
	}
	if n.opt.Expire > 0 {
		ms := strconv.Itoa(int(n.opt.Expire / time.Millisecond))
		args = append(args, "--expire-time="+ms)
	}
	return append(args, title, body)
}
