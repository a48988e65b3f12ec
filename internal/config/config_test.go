package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("S3_BUCKET", "")
	t.Setenv("UPLOAD_DIR", "")

	cfg := Load()

	if cfg.Database.MaxOpenConns != 25 {
		t.Errorf("MaxOpenConns default should be 25, got %d", cfg.Database.MaxOpenConns)
	}
	if cfg.S3.Bucket != "photogate" {
		t.Errorf("S3 bucket default should be photogate, got %q", cfg.S3.Bucket)
	}
	if cfg.Storage.UploadDir != "uploads" {
		t.Errorf("upload dir default should be uploads, got %q", cfg.Storage.UploadDir)
	}
}

func TestLoadEmbeddedChecks(t *testing.T) {
	cfg := Load()
	checks := cfg.Checks.Checks

	if checks.MinWidth != 800 || checks.MinHeight != 600 {
		t.Errorf("minimum resolution should be 800x600, got %dx%d", checks.MinWidth, checks.MinHeight)
	}
	if checks.SharpnessThreshold != 20.0 {
		t.Errorf("sharpness threshold should be 20.0, got %f", checks.SharpnessThreshold)
	}
	if checks.FaceMinArea != 0.05 {
		t.Errorf("face min area should be 0.05, got %f", checks.FaceMinArea)
	}
	if checks.SimilarityThreshold != 0.8 {
		t.Errorf("similarity threshold should be 0.8, got %f", checks.SimilarityThreshold)
	}
	if checks.RecentWindow != 20 {
		t.Errorf("recent window should be 20, got %d", checks.RecentWindow)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_MAX_OPEN_CONNS", "50")
	t.Setenv("S3_USE_SSL", "false")
	t.Setenv("UPLOAD_DIR", "/var/lib/photogate/uploads")

	cfg := Load()

	if cfg.Database.MaxOpenConns != 50 {
		t.Errorf("MaxOpenConns should be 50, got %d", cfg.Database.MaxOpenConns)
	}
	if cfg.S3.UseSSL {
		t.Error("UseSSL should be false when S3_USE_SSL=false")
	}
	if cfg.Storage.UploadDir != "/var/lib/photogate/uploads" {
		t.Errorf("unexpected upload dir %q", cfg.Storage.UploadDir)
	}
}

func TestEnvIntInvalid(t *testing.T) {
	t.Setenv("DATABASE_MAX_IDLE_CONNS", "not-a-number")

	cfg := Load()
	if cfg.Database.MaxIdleConns != 5 {
		t.Errorf("invalid env value should fall back to default 5, got %d", cfg.Database.MaxIdleConns)
	}
}
