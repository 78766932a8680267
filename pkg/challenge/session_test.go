package challenge

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ccollicutt/grepmaster/pkg/config"
	"github.com/ccollicutt/grepmaster/pkg/matcher"
	"github.com/ccollicutt/grepmaster/pkg/parser"
)

const testPack = `
settings: {lives: 2, hints: 1, show_solution: true}
levels:
  - id: 1
    title: One
    challenges:
      - id: 1
        title: Errors
        files: {app.log: "ERROR a\nINFO b\nERROR c\n"}
        correct_command: grep ERROR app.log
        expected_output: ["ERROR a", "ERROR c"]
        hints: [first, second]
        time_limit: 3s
        points: 100
      - id: 2
        title: Count
        files: {app.log: "ERROR a\nINFO b\n"}
        correct_command: grep -c INFO app.log
        expected_output: ["1"]
        hints: [count it]
        time_limit: 60s
        points: 50
  - id: 2
    title: Two
    challenges:
      - id: 3
        title: Case
        files: {s.log: "Warn\nwarn\nok\n"}
        correct_command: grep -i warn s.log
        expected_output: [Warn, warn]
        time_limit: 60s
        points: 10
`

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestSession(t *testing.T, mutate ...func(*config.Pack)) (*Session, *fakeClock) {
	t.Helper()
	pack, err := config.Parse([]byte(testPack))
	if err != nil {
		t.Fatalf("config.Parse() error = %v", err)
	}
	for _, m := range mutate {
		m(pack)
	}
	clock := &fakeClock{now: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)}
	return NewSession(pack, WithClock(clock.Now)), clock
}

func mustStart(t *testing.T, s *Session, level int) {
	t.Helper()
	if err := s.Start(level); err != nil {
		t.Fatalf("Start(%d) error = %v", level, err)
	}
}

func mustSubmit(t *testing.T, s *Session, raw string) *Result {
	t.Helper()
	res, err := s.Submit(raw)
	if err != nil {
		t.Fatalf("Submit(%q) error = %v", raw, err)
	}
	return res
}

func TestSession_SolveAndAdvance(t *testing.T) {
	s, _ := newTestSession(t)
	mustStart(t, s, 0)

	res := mustSubmit(t, s, "grep ERROR app.log")
	if !res.Correct {
		t.Fatalf("Correct = false, output %v", res.Output)
	}
	if res.Points != 100 || res.TimeBonus != 30 {
		t.Errorf("Points = %d, TimeBonus = %d, want 100, 30", res.Points, res.TimeBonus)
	}
	if diff := cmp.Diff([]Achievement{FirstGrep, SpeedDemon}, res.Unlocked); diff != "" {
		t.Errorf("Unlocked mismatch (-want +got):\n%s", diff)
	}
	if res.LifeLost {
		t.Error("LifeLost = true for a correct answer")
	}

	st := s.Status()
	if st.State != StateSucceeded || st.Score != 130 {
		t.Errorf("Status = %v score %d, want succeeded 130", st.State, st.Score)
	}

	if _, err := s.Submit("grep ERROR app.log"); !errors.Is(err, ErrClosed) {
		t.Errorf("Submit() after success error = %v, want ErrClosed", err)
	}

	adv, err := s.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if adv.LevelCompleted || adv.Complete {
		t.Errorf("Next() = %+v, want plain advance", adv)
	}

	st = s.Status()
	if st.Challenge != 2 || st.State != StateActive || st.Lives != 2 || st.HintsLeft != 1 {
		t.Errorf("Status after Next = %+v", st)
	}
	if st.Remaining != 60*time.Second {
		t.Errorf("Remaining = %v, want 60s", st.Remaining)
	}
}

func TestSession_NextBeforeSolved(t *testing.T) {
	s, _ := newTestSession(t)
	mustStart(t, s, 0)

	if _, err := s.Next(); !errors.Is(err, ErrNotSolved) {
		t.Errorf("Next() error = %v, want ErrNotSolved", err)
	}
}

func TestSession_WrongAnswersEndGameOnFirstLevel(t *testing.T) {
	s, _ := newTestSession(t)
	mustStart(t, s, 0)

	res := mustSubmit(t, s, "grep INFO app.log")
	if res.Correct || !res.LifeLost || res.GameOver {
		t.Fatalf("first wrong answer = %+v", res)
	}
	if diff := cmp.Diff([]string{"INFO b"}, res.Output); diff != "" {
		t.Errorf("Output mismatch (-want +got):\n%s", diff)
	}
	if st := s.Status(); st.State != StateFailed || st.Lives != 1 {
		t.Errorf("Status = %v lives %d, want failed 1", st.State, st.Lives)
	}

	res = mustSubmit(t, s, "grep INFO app.log")
	if !res.GameOver {
		t.Fatalf("second wrong answer = %+v, want game over", res)
	}
	if st := s.Status(); st.State != StateGameOver || !st.State.Finished() {
		t.Errorf("State = %v, want game over", st.State)
	}
	if _, err := s.Submit("grep ERROR app.log"); !errors.Is(err, ErrClosed) {
		t.Errorf("Submit() after game over error = %v, want ErrClosed", err)
	}
}

func TestSession_ErrorsCostALife(t *testing.T) {
	tests := []struct {
		name    string
		command string
		wantErr error
	}{
		{"not grep", "cat app.log", parser.ErrInvalidInvocation},
		{"no pattern", "grep -i", parser.ErrMissingPattern},
		{"bad regex", "grep -E ( app.log", matcher.ErrInvalidPattern},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestSession(t)
			mustStart(t, s, 0)

			res := mustSubmit(t, s, tt.command)
			if !errors.Is(res.Err, tt.wantErr) {
				t.Errorf("Err = %v, want %v", res.Err, tt.wantErr)
			}
			if !res.LifeLost || res.Correct {
				t.Errorf("Result = %+v, want a lost life", res)
			}
			if st := s.Status(); st.Lives != 1 || st.Stats.TotalCommands != 1 {
				t.Errorf("Status lives %d commands %d, want 1 1", st.Lives, st.Stats.TotalCommands)
			}
		})
	}
}

func TestSession_EmptyCommandIsFree(t *testing.T) {
	s, _ := newTestSession(t)
	mustStart(t, s, 0)

	if _, err := s.Submit("   "); !errors.Is(err, ErrEmptyCommand) {
		t.Errorf("Submit() error = %v, want ErrEmptyCommand", err)
	}
	if st := s.Status(); st.Lives != 2 || st.Stats.TotalCommands != 0 {
		t.Errorf("Status lives %d commands %d, want 2 0", st.Lives, st.Stats.TotalCommands)
	}
}

func TestSession_DropBackOneLevel(t *testing.T) {
	s, _ := newTestSession(t)
	mustStart(t, s, 2)

	mustSubmit(t, s, "grep ok s.log")
	res := mustSubmit(t, s, "grep ok s.log")

	if !res.DroppedBack || res.FromLevel != 2 || res.ToLevel != 1 || res.GameOver {
		t.Fatalf("Outcome = %+v, want drop back from 2 to 1", res.Outcome)
	}

	st := s.Status()
	if st.Level != 1 || st.Challenge != 1 || st.Lives != 2 || st.State != StateActive {
		t.Errorf("Status after drop back = %+v", st)
	}
}

func TestSession_StartUnknownLevel(t *testing.T) {
	s, _ := newTestSession(t)
	if err := s.Start(9); !errors.Is(err, ErrUnknownLevel) {
		t.Errorf("Start(9) error = %v, want ErrUnknownLevel", err)
	}
	if st := s.Status(); st.State != StateIdle {
		t.Errorf("State = %v, want idle", st.State)
	}
	if _, _, ok := s.Current(); ok {
		t.Error("Current() ok before Start")
	}
}

func TestSession_Hints(t *testing.T) {
	s, _ := newTestSession(t, func(p *config.Pack) { p.Settings.Hints = 5 })
	mustStart(t, s, 0)

	var got []string
	for {
		hint, err := s.Hint()
		if errors.Is(err, ErrNoHints) {
			break
		}
		if err != nil {
			t.Fatalf("Hint() error = %v", err)
		}
		got = append(got, hint)
	}

	if diff := cmp.Diff([]string{"first", "second"}, got); diff != "" {
		t.Errorf("hints mismatch (-want +got):\n%s", diff)
	}
	if st := s.Status(); st.HintsLeft != 0 || st.Stats.HintsUsed != 2 {
		t.Errorf("HintsLeft %d HintsUsed %d, want 0 2", st.HintsLeft, st.Stats.HintsUsed)
	}
}

func TestSession_HintBudget(t *testing.T) {
	s, _ := newTestSession(t)
	mustStart(t, s, 0)

	if hint, err := s.Hint(); err != nil || hint != "first" {
		t.Fatalf("Hint() = %q, %v", hint, err)
	}
	if _, err := s.Hint(); !errors.Is(err, ErrNoHints) {
		t.Errorf("Hint() error = %v, want ErrNoHints", err)
	}
}

func TestSession_FullRunAchievements(t *testing.T) {
	s, _ := newTestSession(t)
	mustStart(t, s, 0)

	mustSubmit(t, s, "grep ERROR app.log")
	if _, err := s.Next(); err != nil {
		t.Fatalf("Next() error = %v", err)
	}

	if res := mustSubmit(t, s, "grep -c INFO"); !res.Correct {
		t.Fatalf("challenge 2 not solved: %v", res.Output)
	}
	adv, err := s.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if !adv.LevelCompleted || adv.Complete {
		t.Errorf("Advance = %+v, want level completed", adv)
	}
	if diff := cmp.Diff([]Achievement{Perfectionist}, adv.Unlocked); diff != "" {
		t.Errorf("level unlocks mismatch (-want +got):\n%s", diff)
	}

	res := mustSubmit(t, s, "grep --ignore-case warn s.log")
	if !res.Correct {
		t.Fatalf("challenge 3 not solved: %v", res.Output)
	}
	if diff := cmp.Diff([]Achievement{CaseMaster}, res.Unlocked); diff != "" {
		t.Errorf("solve unlocks mismatch (-want +got):\n%s", diff)
	}

	adv, err = s.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if !adv.Complete {
		t.Errorf("Advance = %+v, want complete", adv)
	}
	if diff := cmp.Diff([]Achievement{GrepMaster}, adv.Unlocked); diff != "" {
		t.Errorf("final unlocks mismatch (-want +got):\n%s", diff)
	}

	st := s.Status()
	if st.State != StateComplete {
		t.Errorf("State = %v, want complete", st.State)
	}
	if st.Score != 130+650+610 {
		t.Errorf("Score = %d, want %d", st.Score, 130+650+610)
	}
	wantStats := Stats{TotalCommands: 3, CorrectCommands: 3, ChallengesCompleted: 3}
	if diff := cmp.Diff(wantStats, st.Stats); diff != "" {
		t.Errorf("Stats mismatch (-want +got):\n%s", diff)
	}
	want := []Achievement{FirstGrep, SpeedDemon, Perfectionist, CaseMaster, GrepMaster}
	if diff := cmp.Diff(want, st.Achievements); diff != "" {
		t.Errorf("Achievements mismatch (-want +got):\n%s", diff)
	}
}

func TestSession_HintSpoilsPerfectionist(t *testing.T) {
	s, _ := newTestSession(t)
	mustStart(t, s, 0)

	if _, err := s.Hint(); err != nil {
		t.Fatalf("Hint() error = %v", err)
	}
	mustSubmit(t, s, "grep ERROR app.log")
	if _, err := s.Next(); err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	mustSubmit(t, s, "grep -c INFO app.log")
	adv, err := s.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if !adv.LevelCompleted || len(adv.Unlocked) != 0 {
		t.Errorf("Advance = %+v, want level completed without unlocks", adv)
	}
}

func TestSession_SlowSolve(t *testing.T) {
	s, clock := newTestSession(t)
	mustStart(t, s, 0)

	clock.Advance(45 * time.Second)
	res := mustSubmit(t, s, "grep -E 'ERROR' app.log")
	if !res.Correct {
		t.Fatalf("not solved: %v", res.Output)
	}
	if diff := cmp.Diff([]Achievement{FirstGrep, RegexRookie}, res.Unlocked); diff != "" {
		t.Errorf("Unlocked mismatch (-want +got):\n%s", diff)
	}
	if got := s.Status().Stats.FastestTime; got != 45*time.Second {
		t.Errorf("FastestTime = %v, want 45s", got)
	}
}

func TestSession_Solution(t *testing.T) {
	s, _ := newTestSession(t)
	mustStart(t, s, 0)

	command, o, err := s.Solution()
	if err != nil {
		t.Fatalf("Solution() error = %v", err)
	}
	if command != "grep ERROR app.log" || !o.LifeLost {
		t.Errorf("Solution() = %q, %+v", command, o)
	}
	if st := s.Status(); st.Lives != 1 {
		t.Errorf("Lives = %d, want 1", st.Lives)
	}

	hidden, _ := newTestSession(t, func(p *config.Pack) { p.Settings.ShowSolution = false })
	mustStart(t, hidden, 0)
	if _, _, err := hidden.Solution(); !errors.Is(err, ErrSolutionDisabled) {
		t.Errorf("Solution() error = %v, want ErrSolutionDisabled", err)
	}
	if st := hidden.Status(); st.Lives != 2 {
		t.Errorf("Lives = %d, want 2", st.Lives)
	}
}

func TestSession_Skip(t *testing.T) {
	s, _ := newTestSession(t)
	mustStart(t, s, 0)

	o, adv, err := s.Skip()
	if err != nil {
		t.Fatalf("Skip() error = %v", err)
	}
	if !o.LifeLost || adv == nil || adv.LevelCompleted {
		t.Errorf("Skip() = %+v, %+v", o, adv)
	}
	if st := s.Status(); st.Challenge != 2 || st.Lives != 2 {
		t.Errorf("Status after skip = %+v", st)
	}

	_, adv, err = s.Skip()
	if err != nil {
		t.Fatalf("Skip() error = %v", err)
	}
	if adv == nil || !adv.LevelCompleted || len(adv.Unlocked) != 0 {
		t.Errorf("second Skip() advance = %+v, want level completed without unlocks", adv)
	}
	if st := s.Status(); st.Level != 2 {
		t.Errorf("Level = %d, want 2", st.Level)
	}
}

func TestSession_SkipOnLastLife(t *testing.T) {
	s, _ := newTestSession(t)
	mustStart(t, s, 0)

	mustSubmit(t, s, "grep nothing app.log")
	o, adv, err := s.Skip()
	if err != nil {
		t.Fatalf("Skip() error = %v", err)
	}
	if !o.GameOver || adv != nil {
		t.Errorf("Skip() = %+v, %+v, want game over without advance", o, adv)
	}
}

func TestSession_TickExpires(t *testing.T) {
	s, _ := newTestSession(t)
	mustStart(t, s, 0)

	for i, want := range []time.Duration{2 * time.Second, time.Second} {
		if tick := s.Tick(); tick.Remaining != want || tick.Expired {
			t.Fatalf("tick %d = %+v, want %v remaining", i, tick, want)
		}
	}

	tick := s.Tick()
	if !tick.Expired || !tick.LifeLost || tick.Remaining != 0 {
		t.Fatalf("expiring tick = %+v", tick)
	}
	if st := s.Status(); st.State != StateFailed || st.Lives != 1 {
		t.Errorf("Status = %v lives %d, want failed 1", st.State, st.Lives)
	}

	if tick := s.Tick(); tick.Expired || tick.LifeLost {
		t.Errorf("tick after expiry = %+v, want no effect", tick)
	}

	// A solve after expiry earns no time bonus.
	res := mustSubmit(t, s, "grep ERROR app.log")
	if !res.Correct || res.TimeBonus != 0 {
		t.Errorf("Result = %+v, want correct with no bonus", res)
	}
}

func TestSession_ResetRestartsTimer(t *testing.T) {
	s, _ := newTestSession(t)
	mustStart(t, s, 0)

	s.Tick()
	s.Tick()
	s.Tick()
	if err := s.Reset(); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	st := s.Status()
	if st.Remaining != 3*time.Second || st.State != StateActive {
		t.Errorf("Status after reset = %v %v", st.State, st.Remaining)
	}
	if tick := s.Tick(); tick.Remaining != 2*time.Second {
		t.Errorf("Tick() after reset = %+v", tick)
	}

	res := mustSubmit(t, s, "grep ERROR")
	if res.TimeBonus != 20 {
		t.Errorf("TimeBonus = %d, want 20", res.TimeBonus)
	}
}

func TestSession_IdleRejectsInput(t *testing.T) {
	s, _ := newTestSession(t)

	if _, err := s.Submit("grep x"); !errors.Is(err, ErrClosed) {
		t.Errorf("Submit() error = %v", err)
	}
	if _, err := s.Hint(); !errors.Is(err, ErrClosed) {
		t.Errorf("Hint() error = %v", err)
	}
	if err := s.Reset(); !errors.Is(err, ErrClosed) {
		t.Errorf("Reset() error = %v", err)
	}
	if tick := s.Tick(); tick.LifeLost {
		t.Errorf("Tick() = %+v", tick)
	}
}

func TestSession_CurrentAndFiles(t *testing.T) {
	s, _ := newTestSession(t)
	mustStart(t, s, 2)

	level, ch, ok := s.Current()
	if !ok || level.ID != 2 || ch.ID != 3 {
		t.Fatalf("Current() = %d, %d, %v", level.ID, ch.ID, ok)
	}
	if diff := cmp.Diff([]string{"s.log"}, s.Files().Names()); diff != "" {
		t.Errorf("Files() mismatch (-want +got):\n%s", diff)
	}
	if s.ID() == "" || s.Status().SessionID != s.ID() {
		t.Error("session id not set")
	}
}

func TestState_String(t *testing.T) {
	if StateGameOver.String() != "game over" || State(42).String() != "unknown" {
		t.Errorf("String() = %q, %q", StateGameOver.String(), State(42).String())
	}
	if !StateFailed.Open() || StateSucceeded.Open() {
		t.Error("Open() wrong")
	}
}
