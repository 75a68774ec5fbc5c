package model

import (
	"context"

	"glucolog/internal/entity"
)

// Repository 定义数据库操作接口
type Repository interface {
	// 用户管理
	CreateUser(ctx context.Context, user *entity.DbUser) error
	UpdateUser(ctx context.Context, id uint, updates map[string]interface{}) error
	GetUserByEmail(ctx context.Context, email string) (*entity.DbUser, error)
	GetUserByID(ctx context.Context, id uint) (*entity.DbUser, error)
	ListUsers(ctx context.Context) ([]entity.DbUser, error)
	CountUsers(ctx context.Context) (int64, error)
	CountActiveUsers(ctx context.Context) (int64, error)

	// 血糖记录
	CreateReading(ctx context.Context, reading *entity.DbReading) error
	GetReading(ctx context.Context, id uint) (*entity.DbReading, error)
	DeleteReading(ctx context.Context, id uint) error
	ListReadingsByUser(ctx context.Context, userID uint, limit int) ([]entity.DbReading, error)
	ListAllReadings(ctx context.Context) ([]entity.DbReading, error)
	ListReadingsForChart(ctx context.Context, userID uint) ([]entity.DbReading, error)
	CountReadings(ctx context.Context) (int64, error)
}
