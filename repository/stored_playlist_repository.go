package repository

import (
	"context"
	"errors"

	"PlaylistFM/model"

	"gorm.io/gorm"
)

// StoredPlaylistRepository 已保存歌单的数据访问接口
type StoredPlaylistRepository interface {
	Create(ctx context.Context, playlist *model.StoredPlaylist) error
	GetByName(ctx context.Context, name string) (*model.StoredPlaylist, error)
	List(ctx context.Context) ([]*model.StoredPlaylist, error)
	ReplaceItems(ctx context.Context, playlistID int64, items []model.StoredPlaylistItem) error
	Delete(ctx context.Context, name string) error
}

// gormStoredPlaylistRepository GORM 实现
type gormStoredPlaylistRepository struct {
	db *gorm.DB
}

// NewGormStoredPlaylistRepository 创建 GORM 歌单仓库
func NewGormStoredPlaylistRepository(db *gorm.DB) StoredPlaylistRepository {
	return &gormStoredPlaylistRepository{db: db}
}

// Create 创建歌单，Items 的 Position 按切片顺序重新编号
func (r *gormStoredPlaylistRepository) Create(ctx context.Context, playlist *model.StoredPlaylist) error {
	for i := range playlist.Items {
		playlist.Items[i].Position = i
	}
	return r.db.WithContext(ctx).Create(playlist).Error
}

// GetByName 按名字获取歌单及其歌曲，歌曲按位置排序；不存在时返回 nil, nil
func (r *gormStoredPlaylistRepository) GetByName(ctx context.Context, name string) (*model.StoredPlaylist, error) {
	var playlist model.StoredPlaylist
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("name = ?", name).
		First(&playlist).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &playlist, nil
}

// List 列出全部歌单（不含歌曲）
func (r *gormStoredPlaylistRepository) List(ctx context.Context) ([]*model.StoredPlaylist, error) {
	var playlists []*model.StoredPlaylist
	err := r.db.WithContext(ctx).Order("name ASC").Find(&playlists).Error
	return playlists, err
}

// ReplaceItems 用新的歌曲列表整体替换歌单内容
func (r *gormStoredPlaylistRepository) ReplaceItems(ctx context.Context, playlistID int64, items []model.StoredPlaylistItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("playlist_id = ?", playlistID).Delete(&model.StoredPlaylistItem{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		for i := range items {
			items[i].ID = 0
			items[i].PlaylistID = playlistID
			items[i].Position = i
		}
		return tx.Create(&items).Error
	})
}

// Delete 删除歌单和它的全部歌曲
func (r *gormStoredPlaylistRepository) Delete(ctx context.Context, name string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var playlist model.StoredPlaylist
		if err := tx.Where("name = ?", name).First(&playlist).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if err := tx.Where("playlist_id = ?", playlist.ID).Delete(&model.StoredPlaylistItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&playlist).Error
	})
}
