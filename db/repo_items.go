package db

import (
	"context"
	"errors"
	"strings"

	"Gin_postgres_redis_booking_system/models"

	"gorm.io/gorm"
)

// Items

func (r *Repo) CreateItem(ctx context.Context, it *models.Item) error {
	return r.DB.WithContext(ctx).Create(it).Error
}

func (r *Repo) FindItemByID(ctx context.Context, id string) (*models.Item, error) {
	var it models.Item
	if err := r.DB.WithContext(ctx).First(&it, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return &it, nil
}

type ItemsQuery struct {
	Q        string // 模糊搜索：name/category
	Category string
	Status   string
}

func (r *Repo) ListItems(ctx context.Context, q ItemsQuery) ([]models.Item, error) {
	tx := r.DB.WithContext(ctx).Model(&models.Item{})
	if s := strings.TrimSpace(q.Q); s != "" {
		pat := "%" + strings.ToLower(s) + "%"
		tx = tx.Where("LOWER(name) LIKE ? OR LOWER(category) LIKE ?", pat, pat)
	}
	if q.Category != "" {
		tx = tx.Where("category = ?", q.Category)
	}
	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}
	var items []models.Item
	err := tx.Order("created_at DESC").Find(&items).Error
	return items, err
}

type UpdateItemInput struct {
	Name      *string `json:"name"`
	Category  *string `json:"category"`
	Condition *string `json:"condition"`
	Status    *string `json:"status"`
	Capacity  *int    `json:"capacity"`
	ImageURL  *string `json:"imageUrl"`
}

// UpdateItem 部分更新；容量/状态的合法性 controller 已校验
func (r *Repo) UpdateItem(ctx context.Context, id string, in UpdateItemInput) (*models.Item, error) {
	patch := map[string]any{}
	if in.Name != nil {
		patch["name"] = *in.Name
	}
	if in.Category != nil {
		patch["category"] = *in.Category
	}
	if in.Condition != nil {
		patch["condition"] = *in.Condition
	}
	if in.Status != nil {
		patch["status"] = *in.Status
	}
	if in.Capacity != nil {
		patch["capacity"] = *in.Capacity
	}
	if in.ImageURL != nil {
		patch["image_url"] = *in.ImageURL
	}
	if len(patch) > 0 {
		res := r.DB.WithContext(ctx).Model(&models.Item{}).
			Where("id = ?", id).
			Updates(patch)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, ErrItemNotFound
		}
	}
	return r.FindItemByID(ctx, id)
}

func (r *Repo) DeleteItem(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Delete(&models.Item{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrItemNotFound
	}
	return nil
}

// 汇总：该物品状态是否可预订
func (r *Repo) IsItemAvailable(ctx context.Context, itemID string) (bool, error) {
	it, err := r.FindItemByID(ctx, itemID)
	if err != nil {
		return false, err
	}
	return it.Status == models.ItemStatusAvailable, nil
}
