package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/grepmaster/pkg/challenge"
	"github.com/ccollicutt/grepmaster/pkg/output"
)

// PlayOptions holds options for the play command.
type PlayOptions struct {
	Timer bool
	Level int
}

// NewPlayCommand creates the play command.
func NewPlayCommand(g *Globals) *cobra.Command {
	opts := &PlayOptions{}

	cmd := &cobra.Command{
		Use:   "play [pack-file]",
		Short: "Play the grep challenges",
		Long: `Play through a challenge pack in the terminal.

Type grep commands to solve each challenge. Without a file the bundled pack
is played. Wrong answers, errors, solutions, skips and timeouts each cost a
life; running out on a later level drops you back one level.

Commands:
  :hint           Show the next hint
  :solution       Show the solution (costs a life)
  :skip           Skip the challenge (costs a life)
  :reset          Restart the challenge timer
  :files          List the challenge files
  :cat <file>     Print a challenge file
  :status         Show score, lives and achievements
  :help           Show this list
  :quit           Leave the game`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd, args, opts, g)
		},
	}

	cmd.Flags().BoolVarP(&opts.Timer, "timer", "t", false, "Count down each challenge's time limit")
	cmd.Flags().IntVarP(&opts.Level, "level", "l", 0, "Start at this level id")

	return cmd
}

func runPlay(cmd *cobra.Command, args []string, opts *PlayOptions, g *Globals) error {
	ctx := contextOf(cmd.Context())

	var path string
	if len(args) > 0 {
		path = args[0]
	}
	pack, _, err := loadPack(ctx, path)
	if err != nil {
		return err
	}

	session := challenge.NewSession(pack, challenge.WithLogger(g.logger()))
	if err := session.Start(opts.Level); err != nil {
		return err
	}

	p := newPlayer(session, cmd.OutOrStdout(), opts.Timer)
	p.console.Title("grepmaster: learn grep one challenge at a time")
	p.console.Println(output.KindMuted, "Type a grep command, or :help for the list of commands.")
	p.intro()

	if opts.Timer {
		countdown := challenge.StartCountdown(ctx, session, time.Second, p.onTick)
		defer countdown.Stop()
	}

	ExitCode = 0
	return p.loop(ctx, cmd.InOrStdin())
}

// player drives a session from line input. Console writes are serialised
// because the countdown reports from its own goroutine.
type player struct {
	mu      sync.Mutex
	session *challenge.Session
	console *output.Console
	out     io.Writer
	timer   bool
}

func newPlayer(s *challenge.Session, w io.Writer, timer bool) *player {
	return &player{session: s, console: output.NewConsole(w), out: w, timer: timer}
}

func (p *player) loop(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		p.prompt()
		if !scanner.Scan() {
			break
		}
		if ctx.Err() != nil {
			break
		}

		if quit := p.handle(strings.TrimSpace(scanner.Text())); quit {
			break
		}
		if p.session.Status().State.Finished() {
			break
		}
	}

	p.summary()
	return scanner.Err()
}

func (p *player) prompt() {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprint(p.out, "grep> ")
}

// handle runs one line of input and reports whether the player quit.
func (p *player) handle(line string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	name, arg, _ := strings.Cut(line, " ")
	switch name {
	case ":quit", ":q", ":exit":
		return true
	case ":help":
		p.help()
	case ":hint":
		p.hint()
	case ":solution":
		p.solution()
	case ":skip":
		p.skip()
	case ":reset":
		p.reset()
	case ":files":
		p.files()
	case ":cat":
		p.cat(strings.TrimSpace(arg))
	case ":status":
		p.status()
	default:
		if strings.HasPrefix(name, ":") {
			p.console.Printf(output.KindWarning, "Unknown command %s. Type :help for the list.", name)
			return false
		}
		p.submit(line)
	}
	return false
}

func (p *player) submit(line string) {
	res, err := p.session.Submit(line)
	if err != nil {
		p.sessionError(err)
		return
	}

	if res.Err != nil {
		p.console.Printf(output.KindError, "Error: %v", res.Err)
		p.outcome(res.Outcome)
		return
	}

	if len(res.Output) == 0 {
		p.console.Println(output.KindMuted, "(no output)")
	} else {
		p.console.Lines(output.KindNormal, res.Output)
	}

	if !res.Correct {
		p.console.Println(output.KindError, "Not quite. That is not the expected output.")
		p.outcome(res.Outcome)
		return
	}

	if res.TimeBonus > 0 {
		p.console.Printf(output.KindSuccess, "Correct! +%d points (+%d time bonus)", res.Points, res.TimeBonus)
	} else {
		p.console.Printf(output.KindSuccess, "Correct! +%d points", res.Points)
	}
	p.unlocked(res.Unlocked)

	adv, err := p.session.Next()
	if err != nil {
		p.sessionError(err)
		return
	}
	p.advance(adv)
}

func (p *player) hint() {
	hint, err := p.session.Hint()
	if err != nil {
		p.sessionError(err)
		return
	}
	p.console.Printf(output.KindInfo, "Hint: %s", hint)
}

func (p *player) solution() {
	command, o, err := p.session.Solution()
	if err != nil {
		p.sessionError(err)
		return
	}
	p.console.Printf(output.KindInfo, "Solution: %s", command)
	p.outcome(o)
}

func (p *player) skip() {
	o, adv, err := p.session.Skip()
	if err != nil {
		p.sessionError(err)
		return
	}
	p.console.Println(output.KindWarning, "Challenge skipped.")
	if adv == nil {
		p.outcome(o)
		return
	}
	p.unlocked(o.Unlocked)
	p.advance(adv)
}

func (p *player) reset() {
	if err := p.session.Reset(); err != nil {
		p.sessionError(err)
		return
	}
	p.console.Println(output.KindInfo, "Timer reset.")
}

func (p *player) files() {
	files := p.session.Files()
	for _, name := range files.Names() {
		content, _ := files.Content(name)
		p.console.Printf(output.KindNormal, "  %s (%d lines)", name, len(strings.Split(strings.TrimSuffix(content, "\n"), "\n")))
	}
}

func (p *player) cat(name string) {
	if name == "" {
		p.console.Println(output.KindWarning, "Usage: :cat <file>")
		return
	}
	content, ok := p.session.Files().Content(name)
	if !ok {
		p.console.Printf(output.KindError, "No file named %s in this challenge.", name)
		return
	}
	p.console.Panel(name, strings.TrimSuffix(content, "\n"))
}

func (p *player) status() {
	st := p.session.Status()
	body := []string{
		fmt.Sprintf("Level %d, challenge %d: %s", st.Level, st.Challenge, st.ChallengeTitle),
		fmt.Sprintf("Score: %d   Lives: %d   Hints left: %d", st.Score, st.Lives, st.HintsLeft),
		fmt.Sprintf("Commands: %d (%d correct)   Completed: %d", st.Stats.TotalCommands, st.Stats.CorrectCommands, st.Stats.ChallengesCompleted),
	}
	if p.timer {
		body = append(body, fmt.Sprintf("Time left: %s", st.Remaining))
	}
	if len(st.Achievements) > 0 {
		names := make([]string, len(st.Achievements))
		for i, a := range st.Achievements {
			names[i] = a.Info().Name
		}
		body = append(body, "Achievements: "+strings.Join(names, ", "))
	}
	p.console.Panel("Status", strings.Join(body, "\n"))
}

func (p *player) help() {
	p.console.Lines(output.KindMuted, []string{
		":hint  :solution  :skip  :reset  :files  :cat <file>  :status  :quit",
		"Anything else is run as a grep command.",
	})
}

// intro shows the current challenge.
func (p *player) intro() {
	level, ch, ok := p.session.Current()
	if !ok {
		return
	}
	body := []string{
		ch.Description,
		"",
		"Files: " + strings.Join(ch.Files.Names(), ", "),
		fmt.Sprintf("Points: %d", ch.Points),
	}
	if p.timer {
		body = append(body, fmt.Sprintf("Time limit: %s", ch.TimeLimit))
	}
	p.console.Title(level.Title)
	p.console.Panel(fmt.Sprintf("Challenge %d: %s", ch.ID, ch.Title), strings.Join(body, "\n"))
}

func (p *player) outcome(o challenge.Outcome) {
	switch {
	case o.GameOver:
		p.console.Println(output.KindError, "Out of lives. Game over!")
	case o.DroppedBack:
		p.console.Printf(output.KindError, "Out of lives! Back to level %d.", o.ToLevel)
		p.intro()
	case o.LifeLost:
		p.console.Printf(output.KindWarning, "Lost a life. Lives left: %d", p.session.Status().Lives)
	}
	p.unlocked(o.Unlocked)
}

func (p *player) advance(adv *challenge.Advance) {
	if adv.LevelCompleted {
		p.console.Println(output.KindSuccess, "Level complete!")
	}
	p.unlocked(adv.Unlocked)
	if adv.Complete {
		p.console.Println(output.KindSuccess, "You finished every level!")
		return
	}
	p.intro()
}

func (p *player) unlocked(achievements []challenge.Achievement) {
	for _, a := range achievements {
		info := a.Info()
		p.console.Printf(output.KindInfo, "Achievement unlocked: %s (%s)", info.Name, info.Description)
	}
}

func (p *player) sessionError(err error) {
	switch {
	case errors.Is(err, challenge.ErrEmptyCommand), errors.Is(err, challenge.ErrNoHints):
		p.console.Println(output.KindWarning, err.Error())
	case errors.Is(err, challenge.ErrClosed):
		if !p.session.Status().State.Finished() {
			p.console.Println(output.KindWarning, "Nothing to do here.")
		}
	default:
		p.console.Println(output.KindError, err.Error())
	}
}

// onTick reports timer events from the countdown goroutine.
func (p *player) onTick(t challenge.Tick) {
	if !t.Expired && t.Remaining != 10*time.Second {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !t.Expired {
		if p.session.Status().State.Open() {
			fmt.Fprintln(p.out)
			p.console.Println(output.KindWarning, "10 seconds left!")
		}
		return
	}
	fmt.Fprintln(p.out)
	p.console.Println(output.KindError, "Time's up!")
	p.outcome(t.Outcome)
	if !p.session.Status().State.Finished() {
		p.console.Println(output.KindMuted, "Type :reset to restart the timer.")
	}
}

func (p *player) summary() {
	p.mu.Lock()
	defer p.mu.Unlock()

	st := p.session.Status()
	fmt.Fprintln(p.out)
	body := []string{
		fmt.Sprintf("Final score: %d", st.Score),
		fmt.Sprintf("Challenges completed: %d", st.Stats.ChallengesCompleted),
		fmt.Sprintf("Commands: %d (%d correct)   Hints used: %d", st.Stats.TotalCommands, st.Stats.CorrectCommands, st.Stats.HintsUsed),
	}
	if st.Stats.FastestTime > 0 {
		body = append(body, fmt.Sprintf("Fastest solve: %s", st.Stats.FastestTime.Round(time.Millisecond)))
	}
	p.console.Panel("Thanks for playing!", strings.Join(body, "\n"))
}
