package model

// HomepageContent 门户页面可编辑文案 — 对应 homepage_content
type HomepageContent struct {
	Section string `gorm:"type:varchar(50);primaryKey" json:"section"`
	Content string `gorm:"type:text;not null"          json:"content"`
}

// TableName 指定表名
func (HomepageContent) TableName() string { return "homepage_content" }
