// Package tutorial holds the nine stage workflows of the tutorial island run.
// Each stage is a flow.Definition: ordered inference rules, one handler per
// substate and the provenance flags it needs.
package tutorial

import (
	stagehand "github.com/goliatone/go-stagehand"
	"github.com/goliatone/go-stagehand/flow"
	"github.com/goliatone/go-stagehand/world"
)

const (
	StageGielinorGuide    stagehand.Stage = "gielinor_guide"
	StageSurvivalExpert   stagehand.Stage = "survival_expert"
	StageMasterChef       stagehand.Stage = "master_chef"
	StageQuestGuide       stagehand.Stage = "quest_guide"
	StageMiningInstructor stagehand.Stage = "mining_instructor"
	StageCombatInstructor stagehand.Stage = "combat_instructor"
	StageBanker           stagehand.Stage = "banker"
	StagePrayerInstructor stagehand.Stage = "prayer_instructor"
	StageMagicInstructor  stagehand.Stage = "magic_instructor"
	StageComplete         stagehand.Stage = "complete"
)

// Stages returns the macro stages in run order.
func Stages() []stagehand.Stage {
	return []stagehand.Stage{
		StageGielinorGuide,
		StageSurvivalExpert,
		StageMasterChef,
		StageQuestGuide,
		StageMiningInstructor,
		StageCombatInstructor,
		StageBanker,
		StagePrayerInstructor,
		StageMagicInstructor,
		StageComplete,
	}
}

// Outline describes one stage for listings.
type Outline struct {
	Stage     stagehand.Stage
	Next      stagehand.Stage
	Substates []string
	Flags     []string
}

// Outlines describes every stage workflow without building it.
func Outlines() []Outline {
	return []Outline{
		outline(gielinorDefinition()),
		outline(survivalDefinition()),
		outline(chefDefinition()),
		outline(questDefinition()),
		outline(miningDefinition()),
		outline(combatDefinition()),
		outline(bankerDefinition()),
		outline(prayerDefinition()),
		outline(magicDefinition()),
	}
}

func outline[S comparable](def flow.Definition[S]) Outline {
	o := Outline{Stage: def.Stage, Next: def.Next, Substates: def.States()}
	for _, f := range def.Flags {
		o.Flags = append(o.Flags, string(f))
	}
	return o
}

// Build constructs the nine workflows in registry order.
func Build(ctl stagehand.Controller, view *world.View, opts ...flow.Option) ([]stagehand.Workflow, error) {
	builders := []func() (stagehand.Workflow, error){
		func() (stagehand.Workflow, error) { return flow.New(gielinorDefinition(), ctl, view, opts...) },
		func() (stagehand.Workflow, error) { return flow.New(survivalDefinition(), ctl, view, opts...) },
		func() (stagehand.Workflow, error) { return flow.New(chefDefinition(), ctl, view, opts...) },
		func() (stagehand.Workflow, error) { return flow.New(questDefinition(), ctl, view, opts...) },
		func() (stagehand.Workflow, error) { return flow.New(miningDefinition(), ctl, view, opts...) },
		func() (stagehand.Workflow, error) { return flow.New(combatDefinition(), ctl, view, opts...) },
		func() (stagehand.Workflow, error) { return flow.New(bankerDefinition(), ctl, view, opts...) },
		func() (stagehand.Workflow, error) { return flow.New(prayerDefinition(), ctl, view, opts...) },
		func() (stagehand.Workflow, error) { return flow.New(magicDefinition(), ctl, view, opts...) },
	}

	workflows := make([]stagehand.Workflow, 0, len(builders))
	for _, build := range builders {
		wf, err := build()
		if err != nil {
			return nil, err
		}
		workflows = append(workflows, wf)
	}
	return workflows, nil
}

// Install builds the workflows and registers them on exec.
func Install(exec *stagehand.Executor, view *world.View, opts ...flow.Option) error {
	workflows, err := Build(exec, view, opts...)
	if err != nil {
		return err
	}
	return exec.Register(workflows...)
}
