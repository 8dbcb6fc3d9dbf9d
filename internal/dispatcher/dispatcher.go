package dispatcher

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/davrell/codecity/internal/audio"
	"github.com/davrell/codecity/internal/classifier"
	"github.com/davrell/codecity/internal/llm"
	"github.com/davrell/codecity/internal/models"
	"github.com/davrell/codecity/internal/storage"
	"github.com/davrell/codecity/internal/transcript"
)

// CredentialRequester is invoked when an action needs the completion or audio
// collaborator but no credential is configured. Resolution is external; the
// dispatcher never retries on its own.
type CredentialRequester func()

// Options wires the dispatcher's collaborators. Log, Classifier and Logger
// are required; the rest may be nil and the corresponding actions degrade to
// user-visible errors.
type Options struct {
	Log               *transcript.Log
	Classifier        classifier.Classifier
	LLM               llm.Client
	Dialer            audio.Dialer
	AudioConfig       audio.Config
	Store             storage.Storage
	RequestCredential CredentialRequester
	Logger            *zap.Logger
}

// Dispatcher routes validated classifications to their actions. All session
// state (current profile, loading flag, live session handle, game state)
// lives here explicitly rather than in package globals.
type Dispatcher struct {
	log               *transcript.Log
	classifier        classifier.Classifier
	llm               llm.Client
	dialer            audio.Dialer
	audioCfg          audio.Config
	store             storage.Storage
	requestCredential CredentialRequester
	logger            *zap.Logger

	mu      sync.Mutex
	profile models.Profile
	loading bool
	session audio.Session
	live    liveState
	hunt    *foxHunt

	rng *rand.Rand
}

func New(opts Options) *Dispatcher {
	return &Dispatcher{
		log:               opts.Log,
		classifier:        opts.Classifier,
		llm:               opts.LLM,
		dialer:            opts.Dialer,
		audioCfg:          opts.AudioConfig,
		store:             opts.Store,
		requestCredential: opts.RequestCredential,
		logger:            opts.Logger,
		profile:           models.DefaultProfile,
		rng:               rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Profile returns the current persona.
func (d *Dispatcher) Profile() models.Profile {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.profile
}

// HandleCommand is the front door used by the input surfaces. It rejects
// empty input, refuses a second command while one is in flight, appends the
// user's message, classifies, and dispatches. The loading flag is always
// released, whatever the dispatch does.
func (d *Dispatcher) HandleCommand(ctx context.Context, rawText string) {
	rawText = strings.TrimSpace(rawText)
	if rawText == "" {
		return
	}

	if !d.beginCommand() {
		d.appendError("A command is already running. Wait for it to finish.")
		return
	}
	defer d.endCommand()

	d.log.Append(models.NewMessage(models.SenderUser, rawText, models.CategoryCommand))
	d.log.Append(models.NewMessage(models.SenderSystem, "Interpreting command...", models.CategoryNLUStatus))

	res := d.classifier.Classify(ctx, rawText)
	d.Dispatch(ctx, res, rawText)
}

// Dispatch executes exactly one action for a classification. It is the single
// public entry point and is deliberately re-entrant: internal actions that
// synthesize follow-up commands call Dispatch again so the validation and
// clarification short-circuit re-run exactly as for direct user input.
func (d *Dispatcher) Dispatch(ctx context.Context, res models.ClassificationResult, rawText string) {
	res = classifier.Validate(res, rawText)

	// Hard short-circuit: nothing below runs when clarification is needed.
	if res.NeedsClarification {
		text := res.ClarificationText
		if text == "" {
			text = "Could you rephrase that?"
		}
		d.log.Append(models.NewMessage(models.SenderSystem, text, models.CategoryClarification))
		return
	}

	d.logger.Debug("Dispatching intent",
		zap.String("intent", res.Intent),
		zap.String("nuance", res.Nuance))

	switch res.Intent {
	case models.IntentAskAI:
		d.handleAskAI(ctx, res, rawText)
	case models.IntentClear:
		d.log.Clear()
	case models.IntentHelp:
		d.handleHelp()
	case models.IntentSwitchProfile:
		d.handleSwitchProfile(res)
	case models.IntentShowProfile:
		d.handleShowProfile()
	case models.IntentListProfiles:
		d.handleListProfiles()
	case models.IntentOpenPanel:
		d.handleOpenPanel(res)
	case models.IntentConceptualBackend:
		d.handleConceptualBackend(ctx, res)
	case models.IntentSnapshotAction:
		d.handleSnapshotAction(ctx, res)
	case models.IntentListSnapshots:
		d.handleListSnapshots(ctx)
	case models.IntentDeleteSnapshot:
		d.handleDeleteSnapshot(ctx, res)
	case models.IntentStartLiveSession:
		d.handleStartLiveSession(ctx)
	case models.IntentStopLiveSession:
		d.handleStopLiveSession()
	case models.IntentAnalyzeIdea:
		d.handleAnalyzeIdea(ctx, res, rawText)
	case models.IntentRefactor:
		d.handleRefactor(ctx, res, rawText)
	case models.IntentPlayFoxHunt:
		d.handleFoxHunt(ctx, res)
	case models.IntentSystemStatus:
		d.handleSystemStatus()
	default:
		d.appendError(fmt.Sprintf("I don't know what to do with %q. Try rephrasing it.", rawText))
	}
}

func (d *Dispatcher) beginCommand() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.loading {
		return false
	}
	d.loading = true
	return true
}

func (d *Dispatcher) endCommand() {
	d.mu.Lock()
	d.loading = false
	d.mu.Unlock()
}

func (d *Dispatcher) appendError(text string) {
	d.log.Append(models.NewMessage(models.SenderSystem, text, models.CategoryError))
}

func (d *Dispatcher) appendSystem(text string) {
	d.log.Append(models.NewMessage(models.SenderSystem, text, models.CategorySystem))
}

// requireLLM reports whether the completion collaborator is usable. When it
// is not, the failure is reported and the credential requester is invoked;
// the calling action must stop.
func (d *Dispatcher) requireLLM() bool {
	if d.llm != nil {
		return true
	}
	d.appendError("No API credential configured. The console cannot reach the model.")
	if d.requestCredential != nil {
		d.requestCredential()
	}
	return false
}

// reportLLMError converts a collaborator failure into one error message. The
// error text is inspected only as a substring to decide whether to prompt for
// re-authentication; structured codes are never relied on.
func (d *Dispatcher) reportLLMError(err error) {
	d.appendError(fmt.Sprintf("Model request failed: %v", err))
	if needsReauth(err) && d.requestCredential != nil {
		d.requestCredential()
	}
}

func needsReauth(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "401") ||
		strings.Contains(msg, "unauthorized") ||
		strings.Contains(msg, "api key")
}
