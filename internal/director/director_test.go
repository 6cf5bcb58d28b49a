package director

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/twinkle/internal/effects"
	"github.com/ivlev/twinkle/internal/engine"
	"github.com/ivlev/twinkle/internal/stage"
)

func testScript() *Script {
	return &Script{
		Version: ScriptVersion,
		Stage:   Stage{Width: 640, Height: 360, Background: "black"},
		Cues: []Cue{
			{At: 500, Effect: "pulse", X: 100, Y: 100, Options: effects.Options{"radius": 40}},
			{At: 0, Effect: "splash", X: 320, Y: 180, Options: effects.Options{"radius": 60, "color": "#3366ff"}},
			{At: 200, Effect: "drops", X: 500, Y: 200, Options: effects.Options{"radius": 50, "duration_ms": 800}},
		},
	}
}

func testDirector() *Director {
	return &Director{
		Registry: effects.Default(),
		Clock:    engine.NewVirtualClock(time.Unix(0, 0)),
	}
}

func TestPrepare(t *testing.T) {
	plan, err := testDirector().Prepare(testScript())
	require.NoError(t, err)
	require.Len(t, plan.Cues, 3)

	// Sorted by start time
	assert.Equal(t, "splash", plan.Cues[0].Cue.Effect)
	assert.Equal(t, "drops", plan.Cues[1].Cue.Effect)
	assert.Equal(t, "pulse", plan.Cues[2].Cue.Effect)
	assert.Equal(t, 1, plan.Cues[0].Index)

	assert.Equal(t, 120, plan.Cues[0].Scene.Width)
	assert.Equal(t, 3500*time.Millisecond, plan.Length)
}

func TestPrepareRejectsBadCues(t *testing.T) {
	d := testDirector()

	script := testScript()
	script.Cues[2].Effect = "sparkle"
	_, err := d.Prepare(script)
	require.Error(t, err)
	assert.True(t, errors.Is(err, effects.ErrUnknownEffect))
	assert.Contains(t, err.Error(), "cue 2")

	script = testScript()
	script.Cues[0].Options = effects.Options{"radius": -1}
	_, err = d.Prepare(script)
	assert.Error(t, err)

	script = testScript()
	script.Cues[1].At = -10
	_, err = d.Prepare(script)
	assert.Error(t, err)

	_, err = d.Prepare(nil)
	assert.Error(t, err)
}

func TestPlay(t *testing.T) {
	st := stage.NewStage(640, 360, nil)
	err := testDirector().Play(context.Background(), testScript(), st)
	require.NoError(t, err)
	assert.Equal(t, 0, st.Len())
}

func TestPlayInvalidMountsNothing(t *testing.T) {
	st := stage.NewStage(640, 360, nil)
	script := testScript()
	script.Cues = append(script.Cues, Cue{Effect: "orbit", Options: effects.Options{"satellites": 0}})

	err := testDirector().Play(context.Background(), script, st)
	require.Error(t, err)
	assert.Equal(t, 0, st.Len())
}

func TestPlayCancelled(t *testing.T) {
	st := stage.NewStage(640, 360, nil)
	d := &Director{Registry: effects.Default(), Clock: engine.RealClock()}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := d.Play(ctx, testScript(), st)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, 0, st.Len())
}

func TestScriptWriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.yaml")
	script := testScript()
	script.Version = ""

	require.NoError(t, WriteScript(script, path))

	read, err := ReadScript(path)
	require.NoError(t, err)
	assert.Equal(t, ScriptVersion, read.Version)
	assert.Equal(t, script.Stage, read.Stage)
	require.Len(t, read.Cues, 3)
	assert.Equal(t, "drops", read.Cues[2].Effect)
	assert.Equal(t, 200.0, read.Cues[2].At)
	assert.Equal(t, 800, read.Cues[2].Options["duration_ms"])

	// Options survive the round trip in a form Merge accepts
	_, err = testDirector().Prepare(read)
	assert.NoError(t, err)

	_, err = ReadScript(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("cues: [:"), 0644))
	_, err = ReadScript(bad)
	assert.Error(t, err)
}

func TestScriptPath(t *testing.T) {
	path := ScriptPath("scripts")
	assert.Equal(t, "scripts", filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "script_"))
	assert.Equal(t, ".yaml", filepath.Ext(path))
}

func TestFindLatestScript(t *testing.T) {
	dir := t.TempDir()
	files := []string{"script_a.yaml", "script_b.yml", "notes.txt"}
	for i, name := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("version: \"1.0\""), 0644))
		modTime := time.Now().Add(time.Duration(i) * time.Hour)
		require.NoError(t, os.Chtimes(path, modTime, modTime))
	}

	latest, err := FindLatestScript(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "script_b.yml"), latest)

	_, err = FindLatestScript(t.TempDir())
	assert.Error(t, err)
}
