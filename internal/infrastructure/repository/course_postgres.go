package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/waste3d/learnhub-api/internal/domain"
)

type CourseRepository struct {
	db  *gorm.DB
	rdb *redis.Client
}

func NewCourseRepository(db *gorm.DB, rdb *redis.Client) *CourseRepository {
	return &CourseRepository{db: db, rdb: rdb}
}

// === КЕШИРУЕМ СПИСОК КУРСОВ ===
func (r *CourseRepository) List(ctx context.Context, search, category string, limit, offset int) ([]domain.Course, int64, error) {
	// Уникальный ключ кеша на основе фильтров
	cacheKey := fmt.Sprintf("courses:list:%s:%s:%d:%d", search, category, limit, offset)

	// 1. Читаем из кеша
	if r.rdb != nil {
		if val, err := r.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var cached struct {
				Courses []domain.Course
				Total   int64
			}
			if json.Unmarshal([]byte(val), &cached) == nil {
				return cached.Courses, cached.Total, nil
			}
		}
	}

	// 2. Читаем из БД
	var courses []domain.Course
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Course{})
	if search != "" {
		query = query.Where("title ILIKE ?", "%"+search+"%")
	}
	if category != "" && category != "all" {
		query = query.Where("category = ?", category)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Limit(limit).Offset(offset).Order("created_at desc").Find(&courses).Error
	if err != nil {
		return nil, 0, err
	}

	// 3. Пишем в кеш на 10 минут, курсы меняются редко
	if r.rdb != nil {
		cached := struct {
			Courses []domain.Course
			Total   int64
		}{courses, total}
		if data, err := json.Marshal(cached); err == nil {
			r.rdb.Set(ctx, cacheKey, data, 10*time.Minute)
		}
	}

	return courses, total, nil
}

// === КЕШИРУЕМ ОДИН КУРС (С УРОКАМИ) ===
// Уроки всегда отсортированы по order_index — это порядок навигации.
func (r *CourseRepository) GetWithLessons(ctx context.Context, id uuid.UUID) (*domain.Course, error) {
	cacheKey := "course:detail:" + id.String()

	// 1. Кеш
	if r.rdb != nil {
		if val, err := r.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var c domain.Course
			if json.Unmarshal([]byte(val), &c) == nil {
				return &c, nil
			}
		}
	}

	// 2. БД
	var course domain.Course
	err := r.db.WithContext(ctx).
		Preload("Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index asc")
		}).
		First(&course, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCourseNotFound
		}
		return nil, err
	}

	// 3. Кеш на 1 час
	if r.rdb != nil {
		if data, err := json.Marshal(course); err == nil {
			r.rdb.Set(ctx, cacheKey, data, 1*time.Hour)
		}
	}

	return &course, nil
}

func (r *CourseRepository) Create(ctx context.Context, course *domain.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *CourseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Delete(&domain.Course{}, "id = ?", id).Error; err != nil {
		return err
	}
	r.invalidateDetail(ctx, id)
	return nil
}

// Списковые ключи не трогаем — у них TTL 10 минут, этого достаточно.
func (r *CourseRepository) invalidateDetail(ctx context.Context, id uuid.UUID) {
	if r.rdb != nil {
		r.rdb.Del(ctx, "course:detail:"+id.String())
	}
}
