package speech

import (
	"context"
	"fmt"
	"os/exec"
)

// CmdPlayer plays audio files with an external player such as mpg321.
type CmdPlayer struct {
	Cmd  string
	Args []string
}

func NewCmdPlayer(cmd string) *CmdPlayer {
	return &CmdPlayer{Cmd: cmd, Args: []string{"-q"}}
}

func (p *CmdPlayer) Play(ctx context.Context, path string) error {
	args := append(append([]string(nil), p.Args...), path)
	out, err := exec.CommandContext(ctx, p.Cmd, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", p.Cmd, err, out)
	}
	return nil
}
