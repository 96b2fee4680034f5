package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("JSON格式写入文件", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")
		log, closer, err := New(Options{Level: "debug", Format: "json", Output: path})
		require.NoError(t, err)

		log.WithField("book_id", "b-1").Info("listed")
		require.NoError(t, closer())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"book_id":"b-1"`)
		assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	})

	t.Run("默认值", func(t *testing.T) {
		log, _, err := New(Options{})
		require.NoError(t, err)
		assert.Equal(t, logrus.InfoLevel, log.GetLevel())
		assert.IsType(t, &logrus.TextFormatter{}, log.Formatter)
	})

	t.Run("非法级别", func(t *testing.T) {
		_, _, err := New(Options{Level: "loud"})
		assert.Error(t, err)
	})

	t.Run("非法格式", func(t *testing.T) {
		_, _, err := New(Options{Format: "xml"})
		assert.Error(t, err)
	})
}
