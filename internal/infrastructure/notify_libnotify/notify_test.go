package notify_libnotify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestArgs(t *testing.T) {
	n := New(Options{Urgency: "low", Expire: 3 * time.Second})

	assert.Equal(t, []string{
		"--app-name=pipeline-bot",
		"--urgency=low",
		"--expire-time=3000",
		"rebuilt api",
		"Pipeline #7 (main)\nhttps://gl/p/7",
	}, n.args("rebuilt api", "Pipeline #7 (main)", "https://gl/p/7"))

	assert.Equal(t, []string{"--app-name=pipeline-bot", "t", "u"}, New(Options{}).args("t", "", "u"))
}

func TestNotify_SoftIgnoresMissingBinary(t *testing.T) {
	n := NewSoft(Options{})
	n.bin = "pipeline-bot-no-such-notifier"
	assert.NoError(t, n.Notify(context.Background(), "t", "b", ""))

	hard := New(Options{})
	hard.bin = "pipeline-bot-no-such-notifier"
	assert.Error(t, hard.Notify(context.Background(), "t", "b", ""))
}
