package h264writer

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestOpenRejectsBinaryWithoutLibx264(t *testing.T) {
	o := &Opener{
		FFmpegPath: "/usr/bin/ffmpeg",
		listEncoders: func(string) ([]byte, error) {
			return []byte(" V..... mpeg4               MPEG-4 part 2"), nil
		},
	}

	_, err := o.Open(filepath.Join(t.TempDir(), "out.mp4"), 64, 48, 30)
	if !errors.Is(err, ErrEncoderUnavailable) {
		t.Fatalf("got %v, want ErrEncoderUnavailable", err)
	}
}

func TestOpenRejectsUnprobeableBinary(t *testing.T) {
	probeErr := errors.New("exec format error")
	o := &Opener{
		FFmpegPath:   "/usr/bin/ffmpeg",
		listEncoders: func(string) ([]byte, error) { return nil, probeErr },
	}

	_, err := o.Open(filepath.Join(t.TempDir(), "out.mp4"), 64, 48, 30)
	if !errors.Is(err, probeErr) {
		t.Fatalf("got %v, want wrapped probe error", err)
	}
}

func TestEncoderProbeRunsOnce(t *testing.T) {
	probes := 0
	o := &Opener{
		FFmpegPath: "/usr/bin/ffmpeg",
		listEncoders: func(string) ([]byte, error) {
			probes++
			return []byte(" V..... mpeg4"), nil
		},
	}

	path := filepath.Join(t.TempDir(), "out.mp4")
	for i := 0; i < 3; i++ {
		if _, err := o.Open(path, 64, 48, 30); !errors.Is(err, ErrEncoderUnavailable) {
			t.Fatalf("Open %d: got %v, want ErrEncoderUnavailable", i, err)
		}
	}
	if probes != 1 {
		t.Errorf("probe ran %d times, want 1", probes)
	}
}
