// Package gui is the raylib viewer for network activation scenes.
package gui

import (
	"errors"
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/fmriviz/internal/animation"
	"github.com/san-kum/fmriviz/internal/config"
	"github.com/san-kum/fmriviz/internal/metrics"
	"github.com/san-kum/fmriviz/internal/navigation"
	"github.com/san-kum/fmriviz/internal/scene"
	"github.com/san-kum/fmriviz/internal/viz"
)

const (
	screenWidth  = 1280
	screenHeight = 720
)

var (
	ColBg      = rl.NewColor(10, 10, 10, 255)
	ColAccent  = rl.NewColor(180, 180, 180, 255)
	ColSelect  = rl.NewColor(255, 255, 255, 255)
	ColText    = rl.NewColor(140, 140, 140, 255)
	ColTextDim = rl.NewColor(60, 60, 60, 255)
	ColError   = rl.NewColor(230, 70, 70, 255)
)

type App struct {
	nav   *navigation.State
	build navigation.BuildFunc
	opts  *config.Options
	title string

	Camera       rl.Camera3D
	CamPosTarget rl.Vector3
	CamTgtTarget rl.Vector3
	Font         rl.Font

	pool      *animation.FramePool
	elapsed   time.Duration
	paused    bool
	showPaths bool
	fitted    bool
	layer     int
	err       error
	quit      bool
}

func initWindow(title string, fps int) {
	rl.SetConfigFlags(rl.FlagMsaa4xHint)
	rl.InitWindow(screenWidth, screenHeight, title)
	rl.SetTargetFPS(int32(fps))
	rl.SetExitKey(0)
}

func loadFont() rl.Font {
	font := rl.LoadFontEx("/usr/share/fonts/liberation/LiberationMono-Regular.ttf", 32, nil, 0)
	rl.SetTextureFilter(font.Texture, rl.FilterBilinear)
	return font
}

func NewApp(nav *navigation.State, build navigation.BuildFunc, opts *config.Options, title string) *App {
	a := &App{
		nav:       nav,
		build:     build,
		opts:      opts,
		title:     title,
		Font:      loadFont(),
		pool:      animation.NewFramePool(),
		showPaths: true,
	}
	a.Camera = rl.NewCamera3D(
		rl.NewVector3(0, 0, 50),
		rl.NewVector3(0, 0, 0),
		rl.NewVector3(0, 1, 0),
		45.0,
		rl.CameraPerspective,
	)
	a.CamPosTarget = a.Camera.Position
	a.CamTgtTarget = a.Camera.Target
	return a
}

// Run opens the window and blocks until it is closed. A failed load closes
// the window and is returned.
func Run(nav *navigation.State, build navigation.BuildFunc, opts *config.Options, title string) error {
	initWindow(title, opts.FPS)
	defer rl.CloseWindow()

	a := NewApp(nav, build, opts, title)
	a.RunLoop()
	return a.err
}

func (a *App) RunLoop() {
	for !rl.WindowShouldClose() && !a.quit {
		a.Update()
		a.Draw()
	}
}

func (a *App) Update() {
	dt := time.Duration(float64(rl.GetFrameTime()) * float64(time.Second))
	if !a.paused {
		a.elapsed += dt
	}

	if _, err := a.nav.Poll(); err != nil {
		a.err = err
		a.quit = true
		return
	}
	if a.nav.Status() == navigation.Ready && !a.fitted {
		a.fit()
	}

	switch {
	case rl.IsKeyPressed(rl.KeyQ):
		a.quit = true
	case rl.IsKeyPressed(rl.KeyN), rl.IsKeyPressed(rl.KeyRight):
		a.move(a.nav.Next)
	case rl.IsKeyPressed(rl.KeyP), rl.IsKeyPressed(rl.KeyLeft):
		a.move(a.nav.Previous)
	case rl.IsKeyPressed(rl.KeyR):
		if a.build != nil {
			if err := a.nav.BeginLoad(a.build); err != nil && !errors.Is(err, navigation.ErrLoadInFlight) {
				a.err = err
			}
		}
	case rl.IsKeyPressed(rl.KeyRightBracket):
		a.layer++
	case rl.IsKeyPressed(rl.KeyLeftBracket):
		a.layer--
	case rl.IsKeyPressed(rl.KeyL):
		a.showPaths = !a.showPaths
	case rl.IsKeyPressed(rl.KeySpace):
		a.paused = !a.paused
	}

	a.updateCamera(dt.Seconds())
}

func (a *App) updateCamera(dt float64) {
	if rl.IsKeyDown(rl.KeyW) {
		a.CamPosTarget.Y += 0.5
	}
	if rl.IsKeyDown(rl.KeyS) {
		a.CamPosTarget.Y -= 0.5
	}
	if rl.IsKeyDown(rl.KeyA) {
		a.CamPosTarget.X -= 0.5
	}
	if rl.IsKeyDown(rl.KeyD) {
		a.CamPosTarget.X += 0.5
	}

	if rl.IsMouseButtonDown(rl.MouseRightButton) {
		delta := rl.GetMouseDelta()
		a.CamPosTarget.X -= delta.X * 0.2
		a.CamPosTarget.Y += delta.Y * 0.2
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		zoom := float32(wheel) * 3.0
		diff := rl.Vector3Subtract(a.CamTgtTarget, a.CamPosTarget)
		if rl.Vector3Length(diff) > 5.0 || zoom < 0 {
			a.CamPosTarget = rl.Vector3Add(a.CamPosTarget, rl.Vector3Scale(rl.Vector3Normalize(diff), zoom))
		}
	}

	lerp := float32(5.0 * dt)
	if lerp > 1.0 {
		lerp = 1.0
	}
	a.Camera.Position = rl.Vector3Lerp(a.Camera.Position, a.CamPosTarget, lerp)
	a.Camera.Target = rl.Vector3Lerp(a.Camera.Target, a.CamTgtTarget, lerp)
}

func (a *App) move(step func() error) {
	if err := step(); err != nil {
		return
	}
	a.elapsed = 0
	a.layer = 0
	a.fit()
}

// fit aims the camera at the static geometry of the current sample.
func (a *App) fit() {
	r, err := a.nav.Current()
	if err != nil {
		return
	}
	pos, target := viz.ViewFrom(scene.Compose(r, a.opts, 0, nil).Bounds())
	a.CamPosTarget, a.CamTgtTarget = toVector(pos), toVector(target)
	a.fitted = true
}

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)

	r, err := a.nav.Current()
	if err != nil {
		a.drawLoading()
	} else {
		a.drawScene(r)
		a.drawHUD(r)
	}

	rl.EndDrawing()
}

func (a *App) drawText(text string, x, y int, size int, color rl.Color) {
	rl.DrawTextEx(a.Font, text, rl.NewVector2(float32(x), float32(y)), float32(size), 1, color)
}

// drawLoading shows a bar sweeping back and forth while the worker runs.
func (a *App) drawLoading() {
	a.drawText(a.title, 30, 30, 24, ColSelect)

	if a.nav.Status() != navigation.Loading {
		a.drawText("no samples loaded", 30, 80, 16, ColText)
		return
	}

	const barX, barY, barW, barH = 30, 340, screenWidth - 60, 12
	rl.DrawRectangleLines(barX, barY, barW, barH, ColTextDim)
	pos, size := viz.LoadingSweep(a.nav.Elapsed(), barW)
	rl.DrawRectangle(barX+int32(pos), barY, int32(size), barH, ColAccent)

	a.drawText(fmt.Sprintf("simulating network  %s", a.nav.Elapsed().Truncate(100*time.Millisecond)),
		barX, barY+24, 16, ColText)
}

func (a *App) drawScene(r *scene.SampleResult) {
	f := scene.Compose(r, a.opts, a.opts.Phase(a.elapsed), a.pool)

	rl.BeginMode3D(a.Camera)
	for _, q := range f.Tiles {
		drawQuad(q, true)
	}
	for _, v := range f.Nodes {
		rl.DrawCube(vector(v.Pos), 0.4, 0.4, 0.4, ToColor(v.Color))
	}
	if a.showPaths {
		for _, p := range f.Paths {
			rl.DrawLine3D(vector(p[0].Pos), vector(p[1].Pos), ToColor(p[0].Color))
		}
	}
	for _, q := range f.MovingTiles {
		drawQuad(q, false)
	}
	for _, v := range f.Particles {
		rl.DrawSphere(vector(v.Pos), 0.15, ToColor(v.Color))
	}
	rl.EndMode3D()
}

// drawQuad fills both faces of a tile or outlines it.
func drawQuad(q scene.Quad, filled bool) {
	c := ToColor(q[0].Color)
	if !filled {
		for i := range q {
			rl.DrawLine3D(vector(q[i].Pos), vector(q[(i+1)%4].Pos), c)
		}
		return
	}
	v0, v1, v2, v3 := vector(q[0].Pos), vector(q[1].Pos), vector(q[2].Pos), vector(q[3].Pos)
	rl.DrawTriangle3D(v0, v1, v2, c)
	rl.DrawTriangle3D(v0, v2, v3, c)
	rl.DrawTriangle3D(v2, v1, v0, c)
	rl.DrawTriangle3D(v3, v2, v0, c)
}

func (a *App) drawHUD(r *scene.SampleResult) {
	a.drawText(a.title, 30, 30, 24, ColSelect)
	a.drawText(fmt.Sprintf(":: %s  [%d/%d]", r.Input, a.nav.Cursor()+1, a.nav.Len()), 30, 62, 16, ColText)

	status, col := "RUNNING", ColSelect
	if a.paused {
		status, col = "PAUSED", ColTextDim
	}
	a.drawText(status, 1130, 30, 16, col)

	y := 110
	if idx := animatedLayers(r); len(idx) > 0 {
		e := r.Layers[idx[((a.layer%len(idx))+len(idx))%len(idx)]]
		a.drawText(fmt.Sprintf("%s (%s)  %d interactions", e.Visualization.Name, e.Visualization.Kind, e.Interactions),
			30, y, 16, ColAccent)
		y += 24
		values := metrics.Observe(e.Strengths, metrics.NewMeanStrength(), metrics.NewPeakStrength(), metrics.NewExcitation())
		a.drawText(fmt.Sprintf("mean %.3g  peak %.3g  excitation %.2f", values["mean"], values["peak"], values["excitation"]),
			30, y, 14, ColText)
		y += 30
	}
	for _, g := range r.Top {
		label := g.Label
		if label == "" {
			label = fmt.Sprintf("#%d", g.Index)
		}
		a.drawText(fmt.Sprintf("%-12s %.3f", label, g.Score), 30, y, 14, ColText)
		y += 20
	}

	if a.err != nil {
		a.drawText(a.err.Error(), 30, 620, 14, ColError)
	}
	a.drawText("[N/P] SAMPLE  [ [ ] ] LAYER  [L] PATHS  [SPACE] PAUSE  [R] RELOAD  [Q] QUIT", 560, 680, 14, ColTextDim)
	a.drawText(fmt.Sprintf("%d FPS", int32(rl.GetFPS())), 30, 680, 14, ColTextDim)
}

func animatedLayers(r *scene.SampleResult) []int {
	var out []int
	for i, e := range r.Layers {
		if e.Animation != nil {
			out = append(out, i)
		}
	}
	return out
}
