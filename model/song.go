package model

// Tag 歌曲元数据，Duration 以秒为单位，0 表示未知
type Tag struct {
	Title    string `json:"title,omitempty"`
	Artist   string `json:"artist,omitempty"`
	Album    string `json:"album,omitempty"`
	Duration int    `json:"duration,omitempty"`
}

// IsEmpty 判断 tag 是否没有任何信息
func (t *Tag) IsEmpty() bool {
	return t == nil || (t.Title == "" && t.Artist == "" && t.Album == "" && t.Duration == 0)
}

// Song 歌单解析后的一条可播放引用
type Song struct {
	URI string `json:"uri"`
	Tag *Tag   `json:"tag,omitempty"`
}

// NewRemoteSong 创建一个远程歌曲引用
func NewRemoteSong(uri string) Song {
	return Song{URI: uri}
}
