package commands_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghuser/titleguard/services/item/domain/commands"
	"github.com/ghuser/titleguard/services/item/domain/models"
	domainsvcs "github.com/ghuser/titleguard/services/item/domain/services"
)

type fakeSave struct {
	available bool
	enabled   bool
	result    commands.Result
	err       error

	executed     int
	gotSelection commands.Selection
	gotPipeline  *commands.Pipeline
}

func (f *fakeSave) IsAvailable(context.Context, commands.Selection) bool { return f.available }
func (f *fakeSave) IsEnabled(context.Context, commands.Selection) bool   { return f.enabled }

func (f *fakeSave) Execute(_ context.Context, sel commands.Selection, p *commands.Pipeline) (commands.Result, error) {
	f.executed++
	f.gotSelection = sel
	f.gotPipeline = p
	return f.result, f.err
}

type staticSource struct{ item domainsvcs.TitledItem }

func (s staticSource) CurrentItem(context.Context) domainsvcs.TitledItem { return s.item }

type recordingNotifier struct{ messages []models.ValidationMessage }

func (r *recordingNotifier) RegisterError(_ context.Context, msg models.ValidationMessage) {
	r.messages = append(r.messages, msg)
}

func component(title string) *models.Item {
	return &models.Item{ID: uuid.New(), OrgID: uuid.New(), Type: models.ItemTypeComponent, Title: models.ItemTitle(title)}
}

func TestValidateTitleCommand_Execute(t *testing.T) {
	ctx := context.Background()
	sel := commands.Selection{OrgID: uuid.New(), ItemIDs: []uuid.UUID{uuid.New()}}
	pipeline := &commands.Pipeline{Origin: "test"}

	t.Run("valid component title delegates and returns the save result", func(t *testing.T) {
		save := &fakeSave{result: "saved"}
		notifier := &recordingNotifier{}
		cmd := commands.NewValidateTitleCommand(save, staticSource{component("Valid Title 123")}, notifier)

		res, err := cmd.Execute(ctx, sel, pipeline)

		require.NoError(t, err)
		assert.Equal(t, "saved", res)
		assert.Equal(t, 1, save.executed)
		assert.Equal(t, sel, save.gotSelection)
		assert.Same(t, pipeline, save.gotPipeline)
		assert.Empty(t, notifier.messages)
	})

	t.Run("invalid component title blocks the save and notifies", func(t *testing.T) {
		save := &fakeSave{result: "saved"}
		notifier := &recordingNotifier{}
		cmd := commands.NewValidateTitleCommand(save, staticSource{component("caf\u00e9")}, notifier)

		res, err := cmd.Execute(ctx, sel, pipeline)

		require.NoError(t, err)
		assert.Nil(t, res)
		assert.Zero(t, save.executed)
		require.Len(t, notifier.messages, 1)
		assert.Equal(t, "Invalid Component Title", notifier.messages[0].MessageTitle)
		assert.Equal(t,
			"The name of the component contains an invalid character.  Remove or change \u00e9 and try saving again.",
			notifier.messages[0].MessageBody)
	})

	t.Run("non-component item skips validation", func(t *testing.T) {
		save := &fakeSave{result: 42}
		notifier := &recordingNotifier{}
		folder := &models.Item{ID: uuid.New(), Type: models.ItemTypeFolder, Title: "a/b"}
		cmd := commands.NewValidateTitleCommand(save, staticSource{folder}, notifier)

		res, err := cmd.Execute(ctx, sel, pipeline)

		require.NoError(t, err)
		assert.Equal(t, 42, res)
		assert.Equal(t, 1, save.executed)
		assert.Empty(t, notifier.messages)
	})

	t.Run("missing item skips validation", func(t *testing.T) {
		save := &fakeSave{}
		cmd := commands.NewValidateTitleCommand(save, staticSource{nil}, &recordingNotifier{})

		_, err := cmd.Execute(ctx, sel, pipeline)

		require.NoError(t, err)
		assert.Equal(t, 1, save.executed)
	})

	t.Run("empty title skips validation", func(t *testing.T) {
		save := &fakeSave{}
		cmd := commands.NewValidateTitleCommand(save, staticSource{component("")}, &recordingNotifier{})

		_, err := cmd.Execute(ctx, sel, pipeline)

		require.NoError(t, err)
		assert.Equal(t, 1, save.executed)
	})

	t.Run("save error is returned unchanged", func(t *testing.T) {
		boom := errors.New("db down")
		save := &fakeSave{err: boom}
		cmd := commands.NewValidateTitleCommand(save, staticSource{component("ok")}, &recordingNotifier{})

		_, err := cmd.Execute(ctx, sel, pipeline)

		assert.Same(t, boom, err)
	})

	t.Run("validation is re-run on every attempt", func(t *testing.T) {
		save := &fakeSave{}
		notifier := &recordingNotifier{}
		cmd := commands.NewValidateTitleCommand(save, staticSource{component("a/b")}, notifier)

		_, _ = cmd.Execute(ctx, sel, pipeline)
		_, _ = cmd.Execute(ctx, sel, pipeline)

		assert.Len(t, notifier.messages, 2)
		assert.Zero(t, save.executed)
	})
}

func TestValidateTitleCommand_AvailabilityMirrorsSave(t *testing.T) {
	ctx := context.Background()
	sel := commands.Selection{}

	for _, tc := range []struct {
		available, enabled bool
	}{
		{true, true}, {true, false}, {false, true}, {false, false},
	} {
		save := &fakeSave{available: tc.available, enabled: tc.enabled}
		// An invalid title must not influence availability or enablement.
		cmd := commands.NewValidateTitleCommand(save, staticSource{component("a/b")}, &recordingNotifier{})

		assert.Equal(t, tc.available, cmd.IsAvailable(ctx, sel))
		assert.Equal(t, tc.enabled, cmd.IsEnabled(ctx, sel))
	}
}

func TestSelection_Single(t *testing.T) {
	id := uuid.New()

	got, ok := commands.Selection{ItemIDs: []uuid.UUID{id}}.Single()
	assert.True(t, ok)
	assert.Equal(t, id, got)

	_, ok = commands.Selection{}.Single()
	assert.False(t, ok)

	_, ok = commands.Selection{ItemIDs: []uuid.UUID{id, uuid.New()}}.Single()
	assert.False(t, ok)
}
