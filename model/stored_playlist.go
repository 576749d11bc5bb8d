package model

import "time"

// StoredPlaylist 保存在数据库里的歌单，library 插件通过名字读取
type StoredPlaylist struct {
	ID        int64                `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string               `json:"name" gorm:"size:191;uniqueIndex;not null"`
	Items     []StoredPlaylistItem `json:"items,omitempty" gorm:"foreignKey:PlaylistID"`
	CreatedAt time.Time            `json:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

// TableName 指定表名
func (StoredPlaylist) TableName() string {
	return "stored_playlists"
}

// StoredPlaylistItem 歌单中的一首歌
type StoredPlaylistItem struct {
	ID         int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	PlaylistID int64  `json:"playlistId" gorm:"index;not null"`
	Position   int    `json:"position" gorm:"not null"`
	URI        string `json:"uri" gorm:"size:1024;not null"`
	Title      string `json:"title" gorm:"size:255"`
	Artist     string `json:"artist" gorm:"size:255"`
	Album      string `json:"album" gorm:"size:255"`
	Duration   int    `json:"duration"` // 秒
}

// TableName 指定表名
func (StoredPlaylistItem) TableName() string {
	return "stored_playlist_items"
}

// ToSong 转换为歌单解析结果
func (i StoredPlaylistItem) ToSong() Song {
	s := Song{URI: i.URI}
	tag := &Tag{Title: i.Title, Artist: i.Artist, Album: i.Album, Duration: i.Duration}
	if !tag.IsEmpty() {
		s.Tag = tag
	}
	return s
}

// NewStoredPlaylistItem 从解析结果构造歌单条目，位置由仓库写入时编号
func NewStoredPlaylistItem(s Song) StoredPlaylistItem {
	item := StoredPlaylistItem{URI: s.URI}
	if s.Tag != nil {
		item.Title = s.Tag.Title
		item.Artist = s.Tag.Artist
		item.Album = s.Tag.Album
		item.Duration = s.Tag.Duration
	}
	return item
}
