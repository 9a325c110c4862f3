package testbed

import (
	"io/fs"
	m "math"
	"path/filepath"

	"github.com/spaghettifunk/unify/engine"
	"github.com/spaghettifunk/unify/engine/assets"
	"github.com/spaghettifunk/unify/engine/assets/loaders"
	"github.com/spaghettifunk/unify/engine/core"
	"github.com/spaghettifunk/unify/engine/math"
	"github.com/spaghettifunk/unify/engine/systems"
	"github.com/spaghettifunk/unify/engine/tools"
)

const (
	caption      = "Unify testbed: every asset under the asset directory, loaded before the first frame."
	reportPeriod = 2.0
)

type TestGame struct {
	*engine.Game
}

type gameState struct {
	engine *engine.Engine

	width  uint32
	height uint32

	spinner   *math.Transform
	instances *tools.InstanceBuffer
	clouds    []*tools.PointCloud
	caption   []tools.Line

	lastReport float64
	uploads    int
}

func NewTestGame(cfg *engine.ApplicationConfig) *TestGame {
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: cfg,
			State: &gameState{
				spinner: math.TransformCreate(),
			},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown

	return tg
}

func (g *TestGame) state() *gameState {
	return g.State.(*gameState)
}

// Initialize requests every known asset found under the asset directory.
func (g *TestGame) Initialize(e *engine.Engine) error {
	core.LogInfo("initializing testbed...")
	st := g.state()
	st.engine = e

	grid := tools.DefaultMesh2DGridConfig()
	grid.Stagger = true
	grid.XSpacing = 0.5
	grid.ZSpacing = 0.5
	st.instances = tools.NewInstanceBufferFromGrid(grid)

	e.Scheduler().AddStartCall(g.onAssetsLoaded)

	dir := e.Config().AssetDir
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if _, err := assets.KindForExtension(path); err != nil {
			core.LogDebug("skipping %s", path)
			return nil
		}
		_, err = e.Coordinator().RequestAuto(path)
		return err
	})
	if err != nil {
		core.LogWarn("cannot scan asset directory %s: %s", dir, err)
	}
	return nil
}

// onAssetsLoaded turns the loaded assets into scene data.
func (g *TestGame) onAssetsLoaded() {
	st := g.state()
	table := st.engine.Coordinator().Table()
	stage := math.NewBox3(math.NewVec3(-10, -10, -10), math.NewVec3(10, 10, 10))

	for _, name := range table.Names(assets.KindTexture) {
		tex, ok := assets.Lookup[*loaders.Texture](table, assets.KindTexture, name)
		if !ok {
			continue
		}
		colors := tools.ColorSampleFromImage(tex.Image, st.instances.Count(), 0)
		if err := st.instances.SetColors(colors); err != nil {
			core.LogWarn("texture %s: %s", name, err)
			continue
		}
		core.LogInfo("instances colored from texture %s (%dx%d)", name, tex.Width(), tex.Height())
		break
	}

	for _, name := range table.Names(assets.KindModel) {
		model, ok := assets.Lookup[*loaders.Model](table, assets.KindModel, name)
		if !ok || len(model.Positions) == 0 {
			continue
		}
		cloud := tools.PointsFromModel(model, st.spinner)
		tools.ScaleByBounds(stage, model.Bounds, cloud.Transform, tools.DefaultScaleMode)
		tools.CenterOnPoint(model.Bounds.Transform(cloud.Transform.GetLocal()), cloud.Transform, stage.Center())
		st.clouds = append(st.clouds, cloud)
		core.LogInfo("model %s: %d points", name, cloud.Count())
	}

	for _, name := range table.Names(assets.KindFont) {
		f, ok := assets.Lookup[*loaders.Font](table, assets.KindFont, name)
		if !ok || f.Type != loaders.FONT_TYPE_SYSTEM {
			continue
		}
		face, err := f.Face(24, 72)
		if err != nil {
			core.LogWarn("font %s: %s", name, err)
			continue
		}
		st.caption = tools.WrapText(caption, tools.WrapOptions{
			LineLength: 24,
			Justify:    tools.JustifyCenter,
			Face:       face,
		})
		break
	}
	if st.caption == nil {
		st.caption = tools.WrapText(caption, tools.WrapOptions{LineLength: 24, Justify: tools.JustifyCenter})
	}
	for _, l := range st.caption {
		core.LogDebug("caption %6.2f %6.2f %q", l.X, l.Y, l.Text)
	}

	for _, name := range table.Names(assets.KindAudio) {
		if a, ok := assets.Lookup[*loaders.AudioBuffer](table, assets.KindAudio, name); ok {
			core.LogInfo("audio %s: %s", name, a.Duration())
		}
	}
}

func (g *TestGame) Update(t systems.FrameTime) error {
	st := g.state()

	st.spinner.Rotate(math.NewVec3(0, float32(0.5*t.Delta), 0))
	for _, c := range st.clouds {
		c.Transform.Rotate(math.NewVec3(0, float32(0.5*t.Delta), 0))
	}

	for i := 0; i < st.instances.Count(); i++ {
		tr := st.instances.Transform(i)
		tr.Position.Y = float32(m.Sin(t.Time+float64(i)*0.3)) * 0.25
		tr.IsDirty = true
	}
	st.instances.Update()

	if t.Time-st.lastReport >= reportPeriod {
		st.lastReport = t.Time
		fps, ms := st.engine.Scheduler().Metrics().Frame()
		core.LogInfo("%.1f fps (%.2f ms), %d uploads, spinner facing %v",
			fps, ms, st.uploads, st.spinner.WorldDirection())
	}
	return nil
}

func (g *TestGame) Render() error {
	st := g.state()
	if st.instances.NeedsUpload() {
		_ = st.instances.Matrices()
		st.uploads++
	}
	for _, c := range st.clouds {
		c.ClearDirty()
	}
	return nil
}

func (g *TestGame) OnResize(width uint32, height uint32) error {
	st := g.state()
	st.width = width
	st.height = height
	core.LogDebug("testbed viewport %dx%d", width, height)
	return nil
}

func (g *TestGame) Shutdown() error {
	core.LogInfo("shutting down testbed...")
	return nil
}
