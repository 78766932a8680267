package challenge

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ccollicutt/grepmaster/pkg/config"
	"github.com/ccollicutt/grepmaster/pkg/fileset"
	"github.com/ccollicutt/grepmaster/pkg/matcher"
	"github.com/ccollicutt/grepmaster/pkg/parser"
)

var (
	// ErrClosed is returned when the current challenge does not accept input.
	ErrClosed = errors.New("no open challenge")

	// ErrEmptyCommand is returned for blank input. It costs nothing.
	ErrEmptyCommand = errors.New("Please enter a command.")

	// ErrNoHints is returned when the hint budget or the hint list is used up.
	ErrNoHints = errors.New("No hints remaining!")

	// ErrSolutionDisabled is returned when the pack hides solutions.
	ErrSolutionDisabled = errors.New("Solutions are disabled in settings!")

	// ErrNotSolved is returned by Next before the challenge is solved.
	ErrNotSolved = errors.New("challenge not solved yet")

	// ErrUnknownLevel is returned by Start for a level id not in the pack.
	ErrUnknownLevel = errors.New("unknown level")
)

// Stats are counters over a whole session.
type Stats struct {
	TotalCommands       int
	CorrectCommands     int
	HintsUsed           int
	ChallengesCompleted int

	// FastestTime is the quickest solve; zero until the first one.
	FastestTime time.Duration
}

// Outcome describes what an action cost the player.
type Outcome struct {
	LifeLost bool

	// DroppedBack is set when running out of lives sent the player back
	// from level FromLevel to level ToLevel (level ids).
	DroppedBack bool
	FromLevel   int
	ToLevel     int

	// GameOver is set when lives ran out on the first level.
	GameOver bool

	Unlocked []Achievement
}

// Result is the verdict on a submitted command.
type Result struct {
	Outcome

	// Command is nil when the input did not parse.
	Command *parser.Command
	Output  []string

	// Err is the parse or pattern error, if any. It cost a life.
	Err error

	Correct   bool
	Points    int
	TimeBonus int
}

// Advance describes the move to the next challenge.
type Advance struct {
	LevelCompleted bool
	Complete       bool
	Unlocked       []Achievement
}

// Tick is the result of one countdown step.
type Tick struct {
	Outcome
	Remaining time.Duration

	// Expired is set on the tick that ran the timer out.
	Expired bool
}

// Status is a snapshot of a session.
type Status struct {
	SessionID      string
	State          State
	Level          int
	LevelTitle     string
	Challenge      int
	ChallengeTitle string
	Lives          int
	HintsLeft      int
	Remaining      time.Duration
	Score          int
	Stats          Stats
	Achievements   []Achievement
}

// Session is one player's run through a pack. All methods are safe for
// concurrent use; a countdown may tick while commands are submitted.
type Session struct {
	mu sync.Mutex

	id      string
	pack    *config.Pack
	matcher *matcher.Matcher
	logger  *zap.Logger
	now     func() time.Time

	state State
	pos   config.Position
	files *fileset.FileSet

	lives     int
	hintsLeft int
	hintIndex int
	remaining time.Duration
	started   time.Time
	expired   bool

	// levelClean is cleared by hints and skips within the current level.
	levelClean bool

	score        int
	stats        Stats
	completed    map[int]bool
	achievements []Achievement
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock sets the time source used for solve times.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithMatcher overrides the matcher built from the pack settings.
func WithMatcher(m *matcher.Matcher) Option {
	return func(s *Session) {
		if m != nil {
			s.matcher = m
		}
	}
}

// NewSession creates an idle session over a validated pack.
func NewSession(pack *config.Pack, opts ...Option) *Session {
	s := &Session{
		id:        uuid.NewString(),
		pack:      pack,
		matcher:   matcher.New(matcher.WithBasicSyntax(pack.Settings.Syntax())),
		logger:    zap.NewNop(),
		now:       time.Now,
		completed: make(map[int]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("session_id", s.id))
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Matcher returns the matcher commands are evaluated with.
func (s *Session) Matcher() *matcher.Matcher {
	return s.matcher
}

// Start begins the game at the level with the given id, or at the first
// level when id is 0. Score and stats are cleared; achievements are kept.
func (s *Session) Start(levelID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := 0
	if levelID != 0 {
		i, ok := s.pack.FindLevel(levelID)
		if !ok {
			return fmt.Errorf("%w: %d", ErrUnknownLevel, levelID)
		}
		index = i
	}

	s.score = 0
	s.stats = Stats{}
	s.completed = make(map[int]bool)
	s.loadLevel(index)

	s.logger.Info("session started",
		zap.Int("level", s.pack.Levels[index].ID),
		zap.String("basic_syntax", string(s.matcher.BasicSyntax())),
	)
	return nil
}

// Current returns the current level and challenge. ok is false before Start.
func (s *Session) Current() (level config.Level, ch config.Challenge, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateIdle {
		return config.Level{}, config.Challenge{}, false
	}
	return *s.pack.Level(s.pos), *s.pack.Challenge(s.pos), true
}

// Files returns the current challenge files. The set must not be modified.
func (s *Session) Files() *fileset.FileSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.files
}

// Submit evaluates a command against the current challenge. Parse and
// pattern errors and wrong answers cost a life and are reported in the
// Result; the returned error is only for input the session cannot take.
func (s *Session) Submit(raw string) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.Open() {
		return nil, ErrClosed
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrEmptyCommand
	}

	res := &Result{}
	s.stats.TotalCommands++
	s.unlock(FirstGrep, &res.Unlocked)

	s.state = StateEvaluating
	ch := s.pack.Challenge(s.pos)
	cmd, out, err := Evaluate(s.matcher, raw, s.files)
	res.Command, res.Output, res.Err = cmd, out, err

	log := s.logger.With(zap.Int("challenge", ch.ID), zap.String("command", raw))

	switch {
	case err != nil:
		log.Debug("command rejected", zap.Error(err))
		s.state = StateFailed
		s.loseLife(&res.Outcome)
	case !CheckAnswer(out, ch.ExpectedOutput):
		log.Debug("wrong answer", zap.Int("lines", len(out)))
		s.state = StateFailed
		s.loseLife(&res.Outcome)
	default:
		s.succeed(ch, cmd, res)
		log.Info("challenge solved",
			zap.Int("points", res.Points),
			zap.Int("time_bonus", res.TimeBonus),
			zap.Int("score", s.score),
		)
	}

	return res, nil
}

// Next moves on from a solved challenge.
func (s *Session) Next() (*Advance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateSucceeded {
		return nil, ErrNotSolved
	}
	return s.advance(), nil
}

// Hint returns the next hint for the current challenge.
func (s *Session) Hint() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.Open() {
		return "", ErrClosed
	}

	ch := s.pack.Challenge(s.pos)
	if s.hintsLeft <= 0 || s.hintIndex >= len(ch.Hints) {
		return "", ErrNoHints
	}

	hint := ch.Hints[s.hintIndex]
	s.hintIndex++
	s.hintsLeft--
	s.stats.HintsUsed++
	s.levelClean = false
	return hint, nil
}

// Solution reveals the reference command at the cost of a life.
func (s *Session) Solution() (string, Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.Open() {
		return "", Outcome{}, ErrClosed
	}
	if !s.pack.Settings.ShowSolution {
		return "", Outcome{}, ErrSolutionDisabled
	}

	command := s.pack.Challenge(s.pos).CorrectCommand
	var o Outcome
	s.loseLife(&o)
	return command, o, nil
}

// Skip gives up the current challenge at the cost of a life. When that was
// the last life the out-of-lives rule applies instead of advancing, and the
// returned Advance is nil.
func (s *Session) Skip() (Outcome, *Advance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.Open() {
		return Outcome{}, nil, ErrClosed
	}

	var o Outcome
	s.levelClean = false
	s.logger.Info("challenge skipped", zap.Int("challenge", s.pack.Challenge(s.pos).ID))
	s.loseLife(&o)
	if o.GameOver || o.DroppedBack {
		return o, nil, nil
	}
	return o, s.advance(), nil
}

// Reset restarts the timer of the current challenge.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.Open() {
		return ErrClosed
	}
	s.startTimer()
	s.state = StateActive
	return nil
}

// Tick advances the challenge timer by one second. The tick that runs it out
// costs a life; later ticks do nothing until the timer is restarted.
func (s *Session) Tick() Tick {
	s.mu.Lock()
	defer s.mu.Unlock()

	var t Tick
	if s.state.Open() && !s.expired {
		s.remaining = max(0, s.remaining-time.Second)
		if s.remaining == 0 {
			s.expired = true
			t.Expired = true
			s.logger.Info("time expired", zap.Int("challenge", s.pack.Challenge(s.pos).ID))
			s.state = StateFailed
			s.loseLife(&t.Outcome)
		}
	}
	t.Remaining = s.remaining
	return t
}

// Status returns a snapshot of the session.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		SessionID:    s.id,
		State:        s.state,
		Lives:        s.lives,
		Remaining:    s.remaining,
		Score:        s.score,
		Stats:        s.stats,
		Achievements: append([]Achievement(nil), s.achievements...),
	}
	if s.state != StateIdle {
		level, ch := s.pack.Level(s.pos), s.pack.Challenge(s.pos)
		st.Level, st.LevelTitle = level.ID, level.Title
		st.Challenge, st.ChallengeTitle = ch.ID, ch.Title
		st.HintsLeft = min(s.hintsLeft, len(ch.Hints)-s.hintIndex)
	}
	return st
}

func (s *Session) succeed(ch *config.Challenge, cmd *parser.Command, res *Result) {
	res.Correct = true
	res.Points = ch.Points
	res.TimeBonus = int(s.remaining/time.Second) * 10

	s.score += res.Points + res.TimeBonus
	s.stats.CorrectCommands++
	s.stats.ChallengesCompleted++
	s.completed[ch.ID] = true

	elapsed := s.now().Sub(s.started)
	if s.stats.FastestTime == 0 || elapsed < s.stats.FastestTime {
		s.stats.FastestTime = elapsed
	}
	if elapsed < SpeedDemonTime {
		s.unlock(SpeedDemon, &res.Unlocked)
	}

	opts := cmd.Options()
	if opts.IgnoreCase {
		s.unlock(CaseMaster, &res.Unlocked)
	}
	if opts.Extended {
		s.unlock(RegexRookie, &res.Unlocked)
	}
	if opts.HasContext() {
		s.unlock(ContextKing, &res.Unlocked)
	}

	s.state = StateSucceeded
}

// advance loads the challenge after the current one.
func (s *Session) advance() *Advance {
	adv := &Advance{}
	level := s.pack.Level(s.pos)

	if s.pos.Challenge+1 < len(level.Challenges) {
		s.loadChallenge(config.Position{Level: s.pos.Level, Challenge: s.pos.Challenge + 1})
		return adv
	}

	adv.LevelCompleted = true
	if s.levelClean {
		s.unlock(Perfectionist, &adv.Unlocked)
	}
	s.logger.Info("level completed", zap.Int("level", level.ID), zap.Int("score", s.score))

	if s.pos.Level+1 < len(s.pack.Levels) {
		s.loadLevel(s.pos.Level + 1)
		return adv
	}

	adv.Complete = true
	s.state = StateComplete
	if len(s.completed) == s.pack.NumChallenges() {
		s.unlock(GrepMaster, &adv.Unlocked)
	}
	s.logger.Info("game complete", zap.Int("score", s.score))
	return adv
}

// loseLife takes a life and applies the out-of-lives rule.
func (s *Session) loseLife(o *Outcome) {
	s.lives--
	o.LifeLost = true
	if s.lives > 0 {
		return
	}

	from := s.pack.Level(s.pos).ID
	if s.pos.Level == 0 {
		o.GameOver = true
		s.state = StateGameOver
		s.logger.Info("game over", zap.Int("score", s.score))
		return
	}

	s.loadLevel(s.pos.Level - 1)
	o.DroppedBack = true
	o.FromLevel = from
	o.ToLevel = s.pack.Level(s.pos).ID
	s.logger.Info("out of lives, dropped back",
		zap.Int("from_level", o.FromLevel),
		zap.Int("to_level", o.ToLevel),
	)
}

func (s *Session) loadLevel(index int) {
	s.levelClean = true
	s.loadChallenge(config.Position{Level: index, Challenge: 0})
}

// loadChallenge opens the challenge at pos with fresh lives, hints and timer.
func (s *Session) loadChallenge(pos config.Position) {
	s.pos = pos
	ch := s.pack.Challenge(pos)
	s.files = ch.FileSet()
	s.lives = s.pack.Settings.Lives
	s.hintsLeft = s.pack.Settings.Hints
	s.hintIndex = 0
	s.startTimer()
	s.state = StateActive
	s.logger.Debug("challenge loaded", zap.Int("challenge", ch.ID), zap.String("title", ch.Title))
}

func (s *Session) startTimer() {
	s.remaining = s.pack.Challenge(s.pos).TimeLimit
	s.started = s.now()
	s.expired = false
}

func (s *Session) unlock(a Achievement, unlocked *[]Achievement) {
	for _, have := range s.achievements {
		if have == a {
			return
		}
	}
	s.achievements = append(s.achievements, a)
	*unlocked = append(*unlocked, a)
	s.logger.Info("achievement unlocked", zap.String("achievement", string(a)))
}
