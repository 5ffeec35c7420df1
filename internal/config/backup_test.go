package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBackupFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ProjectConfigName)

	t.Run("no config exists", func(t *testing.T) {
		backupPath, err := BackupFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if backupPath != "" {
			t.Errorf("expected empty backup path for non-existent config, got %s", backupPath)
		}
	})

	t.Run("backup existing config", func(t *testing.T) {
		testContent := "version: 1\nretrieval:\n  strategy: fuzzy\n"
		if err := os.WriteFile(configPath, []byte(testContent), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		backupPath, err := BackupFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if backupPath == "" {
			t.Fatal("expected non-empty backup path")
		}

		backupContent, err := os.ReadFile(backupPath)
		if err != nil {
			t.Fatalf("failed to read backup: %v", err)
		}
		if string(backupContent) != testContent {
			t.Errorf("backup content mismatch:\ngot: %s\nwant: %s", backupContent, testContent)
		}
		if filepath.Dir(backupPath) != tmpDir {
			t.Errorf("backup should sit next to the config: %s", backupPath)
		}
	})
}

func TestListBackups(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ProjectConfigName)

	t.Run("no backups exist", func(t *testing.T) {
		backups, err := ListBackups(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(backups) != 0 {
			t.Errorf("expected 0 backups, got %d", len(backups))
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		backups, err := ListBackups(filepath.Join(tmpDir, "nope", ProjectConfigName))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if backups != nil {
			t.Errorf("expected nil, got %v", backups)
		}
	})

	t.Run("newest first", func(t *testing.T) {
		for _, ts := range []string{"20260101-100000", "20260101-120000", "20260101-110000"} {
			name := filepath.Join(tmpDir, ProjectConfigName+BackupSuffix+"."+ts)
			if err := os.WriteFile(name, []byte("test"), 0644); err != nil {
				t.Fatalf("failed to create backup: %v", err)
			}
		}

		backups, err := ListBackups(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(backups) != 3 {
			t.Fatalf("expected 3 backups, got %d", len(backups))
		}
		if filepath.Base(backups[0]) != ProjectConfigName+BackupSuffix+".20260101-120000" {
			t.Errorf("expected newest first, got %s", backups[0])
		}
	})

	t.Run("cleanup old backups", func(t *testing.T) {
		if err := os.WriteFile(configPath, []byte("test config"), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		for i := 0; i < 4; i++ {
			if _, err := BackupFile(configPath); err != nil {
				t.Fatalf("failed to create backup: %v", err)
			}
		}

		backups, err := ListBackups(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(backups) > MaxBackups {
			t.Errorf("expected at most %d backups, got %d", MaxBackups, len(backups))
		}
	})
}

func TestRestoreBackup(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ProjectConfigName)

	if err := os.WriteFile(configPath, []byte("version: 1\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	backupPath, err := BackupFile(configPath)
	if err != nil {
		t.Fatalf("backup failed: %v", err)
	}
	if err := os.WriteFile(configPath, []byte("version: 2\n"), 0644); err != nil {
		t.Fatalf("failed to overwrite config: %v", err)
	}

	if err := RestoreBackup(configPath, backupPath); err != nil {
		t.Fatalf("restore failed: %v", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("failed to read restored config: %v", err)
	}
	if string(data) != "version: 1\n" {
		t.Errorf("restored content mismatch: %q", data)
	}
}
