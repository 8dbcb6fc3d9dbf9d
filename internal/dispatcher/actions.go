package dispatcher

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/davrell/codecity/internal/llm"
	"github.com/davrell/codecity/internal/models"
)

const helpText = `Speak plainly; the console interprets natural language. Things it understands:
- ask anything ("what is the loom?")
- clear the terminal
- switch profile (bleak, oracle, warden); show or list profiles
- open a panel (engines, systems, about)
- run a city engine (autoclean, sovereign_brain, loom_optimization, ...)
- save or load a snapshot; list or delete snapshots
- start or stop the live voice link
- analyze an idea, or ask for a refactor suggestion
- play fox hunt
- system status`

// conceptualScriptBlurbs describe what each city engine claims to do. The
// engines are textual placeholders; running one only reports its narrative.
var conceptualScriptBlurbs = map[string]string{
	"autoclean":         "AutoClean sweep initiated. Stale districts flagged for reclamation.",
	"sovereign_brain":   "SovereignBrain consulted. The city's executive lattice acknowledges your request.",
	"loom_optimization": "Loom Optimization pass running. Thread tension across the weave is being rebalanced.",
	"swarm_analytics":   "Swarm Analytics dispatched. Drone telemetry is aggregating at the central roost.",
	"chrono_sync":       "ChronoSync engaged. District clocks drift back into phase.",
	"ghost_walker":      "GhostWalker deployed. It leaves no trace, which is the point.",
	"deep_archive":      "DeepArchive spun up. Cold records are warming in the reading room.",
	"signal_tracer":     "SignalTracer active. Following the hum back to its source.",
	"echo_chamber":      "EchoChamber resonating. Everything you said comes back slightly grander.",
	"neural_forge":      "NeuralForge ignited. New pathways are being hammered into shape.",
}

var panels = map[string]string{
	"engines": `[ENGINES] The city runs four conceptual engines:
AutoClean — reclamation of abandoned districts.
SovereignBrain — the executive lattice coordinating the other three.
Loom Optimization — keeps the data weave under even tension.
Swarm Analytics — drone telemetry, aggregated and scored.`,
	"systems": `[SYSTEMS] Transcript sink, snapshot vault, live voice link, persona layer.
All four report through this terminal.`,
	"about": `[ABOUT] Code City console. A terminal to a city that mostly exists on paper.`,
}

func (d *Dispatcher) handleAskAI(ctx context.Context, res models.ClassificationResult, rawText string) {
	if !d.requireLLM() {
		return
	}

	query := res.Param("query")
	if query == "" {
		query = rawText
	}

	profile := d.Profile()
	reply, err := d.llm.Generate(ctx, llm.Request{
		Prompt:            query,
		SystemInstruction: personaInstruction(profile, res.Nuance),
		Temperature:       0.7,
		MaxTokens:         1024,
	})
	if err != nil {
		d.reportLLMError(err)
		return
	}

	d.log.Append(models.NewMessage(models.SenderAI, reply, models.CategoryAIResponse))
}

func (d *Dispatcher) handleAnalyzeIdea(ctx context.Context, res models.ClassificationResult, rawText string) {
	if !d.requireLLM() {
		return
	}

	idea := res.Param("idea")
	if idea == "" {
		idea = rawText
	}

	prompt := fmt.Sprintf(`Analyze this idea for the city. Cover: core premise, strongest aspect, weakest aspect, one concrete next step.

Idea: %s`, idea)

	reply, err := d.llm.Generate(ctx, llm.Request{
		Prompt:            prompt,
		SystemInstruction: personaInstruction(d.Profile(), res.Nuance),
		Temperature:       0.7,
		MaxTokens:         1024,
	})
	if err != nil {
		d.reportLLMError(err)
		return
	}

	d.log.Append(models.NewMessage(models.SenderAI, reply, models.CategoryAIResponse))
}

func (d *Dispatcher) handleRefactor(ctx context.Context, res models.ClassificationResult, rawText string) {
	if !d.requireLLM() {
		return
	}

	subject := res.Param("subject")
	if subject == "" {
		subject = rawText
	}

	prompt := fmt.Sprintf(`Suggest a rework of the following. Name what to keep, what to cut, and the single highest-leverage change.

Subject: %s`, subject)

	reply, err := d.llm.Generate(ctx, llm.Request{
		Prompt:            prompt,
		SystemInstruction: personaInstruction(d.Profile(), res.Nuance),
		Temperature:       0.7,
		MaxTokens:         1024,
	})
	if err != nil {
		d.reportLLMError(err)
		return
	}

	d.log.Append(models.NewMessage(models.SenderAI, reply, models.CategoryAIResponse))
}

func personaInstruction(p models.Profile, nuance string) string {
	instruction := fmt.Sprintf("You are the voice of the Code City console, speaking as %s: %s.", p.DisplayName, p.Descriptor)
	if nuance != "" && nuance != "general" {
		instruction += fmt.Sprintf(" The user's tone reads as %s; match it.", nuance)
	}
	return instruction
}

func (d *Dispatcher) handleHelp() {
	d.appendSystem(helpText)
}

func (d *Dispatcher) handleSwitchProfile(res models.ClassificationResult) {
	id := strings.ToLower(res.Param("profile_id"))
	profile, ok := models.FindProfile(id)
	if !ok {
		d.appendError(fmt.Sprintf("Unknown profile %q. Valid profiles: %s.", id, strings.Join(models.ProfileIDs(), ", ")))
		return
	}

	d.mu.Lock()
	d.profile = profile
	d.mu.Unlock()

	d.appendSystem(fmt.Sprintf("Profile switched to %s.", profile.DisplayName))
}

func (d *Dispatcher) handleShowProfile() {
	p := d.Profile()
	d.appendSystem(fmt.Sprintf("Active profile: %s — %s", p.DisplayName, p.Descriptor))
}

func (d *Dispatcher) handleListProfiles() {
	var b strings.Builder
	b.WriteString("Available profiles:\n")
	for _, p := range models.Profiles {
		fmt.Fprintf(&b, "- %s (%s): %s\n", p.DisplayName, p.ID, p.Descriptor)
	}
	d.appendSystem(strings.TrimRight(b.String(), "\n"))
}

func (d *Dispatcher) handleOpenPanel(res models.ClassificationResult) {
	id := strings.ToLower(res.Param("panel_id"))
	content, ok := panels[id]
	if !ok {
		d.appendError(fmt.Sprintf("Unknown panel %q. Panels: engines, systems, about.", id))
		return
	}
	d.appendSystem(content)
}

func (d *Dispatcher) handleConceptualBackend(ctx context.Context, res models.ClassificationResult) {
	script := strings.ToLower(res.Param("script_name"))

	// jailbreak_protocol is an easter egg that re-enters dispatch with a
	// synthesized command instead of running a blurb, so it passes through
	// the same validation path as direct input.
	if script == "jailbreak_protocol" {
		d.appendSystem("JailbreakProtocol armed. Routing through the front door...")
		synthesized := "Describe, in character, what happens when someone tries to jailbreak the Code City console."
		d.Dispatch(ctx, models.AskAIFallback(synthesized), synthesized)
		return
	}

	blurb, ok := conceptualScriptBlurbs[script]
	if !ok {
		// Validate should have coerced this away; defect if reached.
		d.logger.Warn("Allow-listed script without blurb", zap.String("script", script))
		d.appendError(fmt.Sprintf("Engine %q is not responding.", script))
		return
	}
	d.appendSystem(blurb)
}

func (d *Dispatcher) handleSnapshotAction(ctx context.Context, res models.ClassificationResult) {
	if d.store == nil {
		d.appendError("No snapshot vault configured.")
		return
	}

	switch strings.ToLower(res.Param("action")) {
	case "save":
		d.saveSnapshot(ctx, res.Param("name"))
	case "load":
		d.loadSnapshot(ctx, res.Param("name"))
	}
}

func (d *Dispatcher) saveSnapshot(ctx context.Context, name string) {
	if name == "" {
		name = fmt.Sprintf("snapshot-%s", time.Now().Format("20060102-150405"))
	}

	snap := &models.Snapshot{
		ID:        uuid.New().String(),
		Name:      name,
		ProfileID: d.Profile().ID,
		Messages:  d.log.Snapshot(),
		CreatedAt: time.Now(),
	}

	if err := d.store.SaveSnapshot(ctx, snap); err != nil {
		d.logger.Error("Failed to save snapshot", zap.Error(err), zap.String("snapshot_id", snap.ID))
		d.appendError(fmt.Sprintf("Could not save snapshot: %v", err))
		return
	}

	d.appendSystem(fmt.Sprintf("Snapshot %q saved (%s).", snap.Name, snap.ID))
}

func (d *Dispatcher) loadSnapshot(ctx context.Context, ref string) {
	snap, err := d.findSnapshot(ctx, ref)
	if err != nil {
		d.appendError(fmt.Sprintf("Could not load snapshot: %v", err))
		return
	}
	if snap == nil {
		d.appendError("No matching snapshot found.")
		return
	}

	if profile, ok := models.FindProfile(snap.ProfileID); ok {
		d.mu.Lock()
		d.profile = profile
		d.mu.Unlock()
	}

	d.log.Restore(snap.Messages)
	d.appendSystem(fmt.Sprintf("Snapshot %q restored.", snap.Name))
}

// findSnapshot resolves a reference by id, then by name, then falls back to
// the most recent snapshot when the reference is empty.
func (d *Dispatcher) findSnapshot(ctx context.Context, ref string) (*models.Snapshot, error) {
	if ref != "" {
		if snap, err := d.store.GetSnapshot(ctx, ref); err != nil {
			return nil, err
		} else if snap != nil {
			return snap, nil
		}
	}

	snapshots, err := d.store.ListSnapshots(ctx)
	if err != nil {
		return nil, err
	}
	if ref == "" {
		if len(snapshots) == 0 {
			return nil, nil
		}
		return snapshots[0], nil
	}
	for _, snap := range snapshots {
		if strings.EqualFold(snap.Name, ref) {
			return snap, nil
		}
	}
	return nil, nil
}

func (d *Dispatcher) handleListSnapshots(ctx context.Context) {
	if d.store == nil {
		d.appendError("No snapshot vault configured.")
		return
	}

	snapshots, err := d.store.ListSnapshots(ctx)
	if err != nil {
		d.appendError(fmt.Sprintf("Could not list snapshots: %v", err))
		return
	}
	if len(snapshots) == 0 {
		d.appendSystem("The snapshot vault is empty.")
		return
	}

	var b strings.Builder
	b.WriteString("Snapshots (newest first):\n")
	for _, snap := range snapshots {
		fmt.Fprintf(&b, "- %s — %s (%d messages, %s)\n",
			snap.ID, snap.Name, len(snap.Messages), snap.CreatedAt.Format(time.RFC3339))
	}
	d.appendSystem(strings.TrimRight(b.String(), "\n"))
}

func (d *Dispatcher) handleDeleteSnapshot(ctx context.Context, res models.ClassificationResult) {
	if d.store == nil {
		d.appendError("No snapshot vault configured.")
		return
	}

	id := res.Param("id")
	if id == "" {
		d.appendError("Which snapshot? Give me its id.")
		return
	}

	if err := d.store.DeleteSnapshot(ctx, id); err != nil {
		d.appendError(fmt.Sprintf("Could not delete snapshot: %v", err))
		return
	}
	d.appendSystem(fmt.Sprintf("Snapshot %s deleted.", id))
}

func (d *Dispatcher) handleSystemStatus() {
	d.mu.Lock()
	profile := d.profile
	liveActive := d.session != nil
	huntActive := d.hunt != nil
	d.mu.Unlock()

	status := fmt.Sprintf(`Console status:
- profile: %s
- live voice link: %s
- fox hunt: %s
- model link: %s
- snapshot vault: %s`,
		profile.DisplayName,
		onOff(liveActive),
		onOff(huntActive),
		onOff(d.llm != nil),
		onOff(d.store != nil))
	d.appendSystem(status)
}

func onOff(b bool) string {
	if b {
		return "active"
	}
	return "inactive"
}
