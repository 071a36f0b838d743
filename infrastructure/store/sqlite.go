// Package store persists rendered QR images in SQLite so repeat requests
// after a restart skip the encode/decode/render pipeline entirely.
package store

import (
	"context"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/prasetyowira/qrpix/constant"
	"github.com/prasetyowira/qrpix/domain/qr"
	appLogger "github.com/prasetyowira/qrpix/infrastructure/logger"
)

// SQLiteStore implements qr.RenderStore on a local SQLite database.
type SQLiteStore struct {
	db *gorm.DB
}

// RenderedImageModel is the GORM model for a persisted render. One row per
// (payload hash, dimension, foreground color) triple.
type RenderedImageModel struct {
	ID         uint   `gorm:"primaryKey"`
	PayloadSum string `gorm:"index:idx_rendered_key,unique;not null"`
	Dimension  int    `gorm:"index:idx_rendered_key,unique;not null"`
	Foreground string `gorm:"index:idx_rendered_key,unique"`
	Data       []byte `gorm:"not null"`
	CreatedAt  time.Time
}

// GormLogger implements GORM's logger.Interface on the app logger
type GormLogger struct{}

// LogMode implements the log.Interface method
func (l *GormLogger) LogMode(level gormLogger.LogLevel) gormLogger.Interface {
	return l
}

// Info logs info messages
func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	appLogger.CtxInfo(ctx, msg, appLogger.LoggerInfo{
		ContextFunction: constant.CtxDB,
		Data: map[string]interface{}{
			constant.DataData: data,
		},
	})
}

// Warn logs warn messages
func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	appLogger.CtxWarn(ctx, msg, appLogger.LoggerInfo{
		ContextFunction: constant.CtxDB,
		Data: map[string]interface{}{
			constant.DataData: data,
		},
	})
}

// Error logs error messages
func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	appLogger.CtxError(ctx, msg, appLogger.LoggerInfo{
		ContextFunction: constant.CtxDB,
		Error: &appLogger.CustomError{
			Code:    constant.ErrCodeDBGeneral,
			Message: msg,
			Type:    constant.ErrTypeDB,
		},
		Data: map[string]interface{}{
			constant.DataData: data,
		},
	})
}

// Trace logs SQL operations
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	sql, rows := fc()

	if err != nil {
		appLogger.CtxError(ctx, "SQL error", appLogger.LoggerInfo{
			ContextFunction: constant.CtxDB,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeDBGeneral,
				Message: err.Error(),
				Type:    constant.ErrTypeDB,
			},
			Data: map[string]interface{}{
				constant.DataElapsed: elapsed.String(),
				constant.DataRows:    rows,
				constant.DataSQL:     sql,
			},
		})
		return
	}

	appLogger.CtxDebug(ctx, "SQL query", appLogger.LoggerInfo{
		ContextFunction: constant.CtxDB,
		Data: map[string]interface{}{
			constant.DataElapsed: elapsed.String(),
			constant.DataRows:    rows,
			constant.DataSQL:     sql,
		},
	})
}

// NewSQLiteStore opens (or creates) the database at dbPath and migrates the
// schema.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	ctx := appLogger.NewRequestContext()

	appLogger.CtxDebug(ctx, "Opening SQLite render store", appLogger.LoggerInfo{
		ContextFunction: constant.CtxDB,
		Data: map[string]interface{}{
			constant.DataPath: dbPath,
		},
	})

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: &GormLogger{},
	})
	if err != nil {
		appLogger.CtxError(ctx, "Failed to open database", appLogger.LoggerInfo{
			ContextFunction: constant.CtxDB,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeDBOpen,
				Message: err.Error(),
				Type:    constant.ErrTypeDB,
			},
			Data: map[string]interface{}{
				constant.DataPath: dbPath,
			},
		})
		return nil, err
	}

	if err := db.AutoMigrate(&RenderedImageModel{}); err != nil {
		appLogger.CtxError(ctx, "Failed to migrate database schema", appLogger.LoggerInfo{
			ContextFunction: constant.CtxDB,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeDBMigrate,
				Message: err.Error(),
				Type:    constant.ErrTypeDB,
			},
		})
		return nil, err
	}

	appLogger.CtxInfo(ctx, "Render store initialized", appLogger.LoggerInfo{
		ContextFunction: constant.CtxDB,
		Data: map[string]interface{}{
			constant.DataPath: dbPath,
		},
	})

	return &SQLiteStore{db: db}, nil
}

// Load returns the persisted PNG for the key, or qr.ErrRenderedNotFound.
func (s *SQLiteStore) Load(ctx context.Context, payloadSum string, dimension int, foreground string) ([]byte, error) {
	var model RenderedImageModel

	rows, err := s.db.Raw(
		`SELECT id, payload_sum, dimension, foreground, data, created_at
		   FROM rendered_image_models
		  WHERE payload_sum = ? AND dimension = ? AND foreground = ? LIMIT 1`,
		payloadSum, dimension, foreground,
	).Rows()
	if err != nil {
		appLogger.CtxError(ctx, "Database error while loading rendered image", appLogger.LoggerInfo{
			ContextFunction: constant.CtxStoreLoad,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeDBLookup,
				Message: err.Error(),
				Type:    constant.ErrTypeDB,
			},
			Data: map[string]interface{}{
				constant.DataPayloadSum: payloadSum,
				constant.DataDimension:  dimension,
			},
		})
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, qr.ErrRenderedNotFound
	}

	if err := s.db.ScanRows(rows, &model); err != nil {
		appLogger.CtxError(ctx, "Failed to scan rendered image row", appLogger.LoggerInfo{
			ContextFunction: constant.CtxStoreLoad,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeDBLookup,
				Message: err.Error(),
				Type:    constant.ErrTypeDB,
			},
		})
		return nil, err
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return model.Data, nil
}

// Save persists a freshly rendered PNG, replacing any previous row for the
// same key.
func (s *SQLiteStore) Save(ctx context.Context, payloadSum string, dimension int, foreground string, data []byte) error {
	result := s.db.Exec(
		`INSERT INTO rendered_image_models (payload_sum, dimension, foreground, data, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (payload_sum, dimension, foreground) DO UPDATE SET data = excluded.data, created_at = excluded.created_at`,
		payloadSum, dimension, foreground, data, time.Now(),
	)
	if result.Error != nil {
		appLogger.CtxError(ctx, "Failed to save rendered image", appLogger.LoggerInfo{
			ContextFunction: constant.CtxStoreSave,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeDBInsert,
				Message: result.Error.Error(),
				Type:    constant.ErrTypeDB,
			},
			Data: map[string]interface{}{
				constant.DataPayloadSum: payloadSum,
				constant.DataDimension:  dimension,
			},
		})
		return result.Error
	}

	appLogger.CtxDebug(ctx, "Rendered image saved", appLogger.LoggerInfo{
		ContextFunction: constant.CtxStoreSave,
		Data: map[string]interface{}{
			constant.DataPayloadSum:   payloadSum,
			constant.DataDimension:    dimension,
			constant.DataSize:         len(data),
			constant.DataRowsAffected: result.RowsAffected,
		},
	})

	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	ctx := context.Background()
	sqlDB, err := s.db.DB()
	if err != nil {
		appLogger.CtxError(ctx, "Failed to get database connection", appLogger.LoggerInfo{
			ContextFunction: constant.CtxClose,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeDBClose,
				Message: err.Error(),
				Type:    constant.ErrTypeDB,
			},
		})
		return err
	}

	appLogger.CtxInfo(ctx, "Closing render store", appLogger.LoggerInfo{
		ContextFunction: constant.CtxClose,
	})

	return sqlDB.Close()
}
