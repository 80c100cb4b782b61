package encode

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/user/slidecast/pkg/adapters/logger"
	"github.com/user/slidecast/pkg/mocks"
	"github.com/user/slidecast/pkg/pipeline"
	"github.com/user/slidecast/pkg/ports"
)

func input(fs *mocks.FileSystem, bgm string) pipeline.EncodeInput {
	fs.WriteFile("/work/raw_video.mp4", []byte("raw"))
	return pipeline.EncodeInput{
		RawArtifactPath: "/work/raw_video.mp4",
		OutputPath:      "/out/final.mp4",
		BGMPath:         bgm,
		WorkDir:         "/work",
	}
}

func TestExecutePrimarySuccess(t *testing.T) {
	fs := mocks.NewFileSystem()
	tr := mocks.NewTranscoder()
	tr.TranscodeFunc = func(ctx context.Context, args []string) error {
		// The primary run writes the final artifact into the work dir.
		return fs.WriteFile(args[len(args)-1], []byte("encoded"))
	}
	stage := NewStage(tr, fs, logger.NewNoop())

	out, err := stage.Execute(context.Background(), input(fs, ""))
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if out.Degraded {
		t.Error("primary success should not be degraded")
	}
	if out.OutputPath != "/out/final.mp4" {
		t.Errorf("OutputPath = %s", out.OutputPath)
	}
	if ok, _ := fs.Exists("/out/final.mp4"); !ok {
		t.Error("final artifact should be at the destination")
	}

	calls := tr.Calls()
	if len(calls) != 1 {
		t.Fatalf("got %d transcoder calls, want 1", len(calls))
	}
	cmd := strings.Join(calls[0], " ")
	if !strings.Contains(cmd, "-c:v libx264") || !strings.Contains(cmd, "-pix_fmt yuv420p") {
		t.Errorf("unexpected encode command: %s", cmd)
	}
	if strings.Contains(cmd, "-c:a") {
		t.Errorf("no-bgm command should not mux audio: %s", cmd)
	}
}

func TestExecuteMuxesBackgroundMusic(t *testing.T) {
	fs := mocks.NewFileSystem()
	tr := mocks.NewTranscoder()
	tr.TranscodeFunc = func(ctx context.Context, args []string) error {
		return fs.WriteFile(args[len(args)-1], []byte("encoded"))
	}
	stage := NewStage(tr, fs, logger.NewNoop())

	if _, err := stage.Execute(context.Background(), input(fs, "/music/bgm.mp3")); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	cmd := strings.Join(tr.Calls()[0], " ")
	for _, want := range []string{
		"-i /music/bgm.mp3",
		"-map 0:v:0",
		"-map 1:a:0",
		"-c:a aac",
		"-b:a 192k",
		"-shortest",
	} {
		if !strings.Contains(cmd, want) {
			t.Errorf("command missing %q: %s", want, cmd)
		}
	}
}

func TestExecuteFallsBackToRawArtifact(t *testing.T) {
	fs := mocks.NewFileSystem()
	tr := mocks.NewTranscoder()
	tr.TranscodeFunc = func(ctx context.Context, args []string) error {
		return &ports.ExecError{Name: "ffmpeg", Stderr: "Unknown encoder 'libx264'", Err: errors.New("exit status 1")}
	}
	stage := NewStage(tr, fs, logger.NewNoop())

	out, err := stage.Execute(context.Background(), input(fs, ""))
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !out.Degraded {
		t.Error("raw-artifact fallback should be degraded")
	}
	if ok, _ := fs.Exists("/out/final.mp4"); !ok {
		t.Error("raw artifact should be moved to the destination")
	}
	if ok, _ := fs.Exists("/work/raw_video.mp4"); ok {
		t.Error("raw artifact should be gone after the move")
	}
	if len(out.Attempts) != 2 {
		t.Fatalf("got %d attempts, want 2", len(out.Attempts))
	}
	if out.Attempts[0].Succeeded || !out.Attempts[1].Succeeded {
		t.Errorf("attempt outcomes = %+v", out.Attempts)
	}
}

func TestExecuteBothRungsFail(t *testing.T) {
	fs := mocks.NewFileSystem()
	tr := mocks.NewTranscoder()
	tr.TranscodeFunc = func(ctx context.Context, args []string) error {
		return &ports.ExecError{Name: "ffmpeg", Stderr: "encoder exploded", Err: errors.New("exit status 1")}
	}
	fs.RenameFunc = func(oldPath, newPath string) error {
		return errors.New("read-only destination")
	}
	stage := NewStage(tr, fs, logger.NewNoop())

	_, err := stage.Execute(context.Background(), input(fs, ""))
	if err == nil {
		t.Fatal("expected a terminal failure")
	}
	// Both diagnostics are concatenated for the operator.
	if !strings.Contains(err.Error(), "encoder exploded") {
		t.Errorf("error missing encoder diagnostic: %v", err)
	}
	if !strings.Contains(err.Error(), "read-only destination") {
		t.Errorf("error missing move diagnostic: %v", err)
	}
}

func TestExecuteCancelledContext(t *testing.T) {
	fs := mocks.NewFileSystem()
	tr := mocks.NewTranscoder()
	tr.TranscodeFunc = func(ctx context.Context, args []string) error {
		return ctx.Err()
	}
	stage := NewStage(tr, fs, logger.NewNoop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := stage.Execute(ctx, input(fs, ""))
	if !errors.Is(err, pipeline.ErrStopped) {
		t.Fatalf("got %v, want ErrStopped", err)
	}
}
