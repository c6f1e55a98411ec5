package model

// IconCode 任务图标的持久化编码，对应固定图标集中的位置
type IconCode int

// 固定图标集（共 8 个）。编码会持久化到存储中，
// 只能在末尾追加新图标，不能调整已有顺序。
const (
	IconIron   IconCode = iota // 电熨斗
	IconDoor                   // 房门
	IconWindow                 // 窗户
	IconStove                  // 燃气灶
	IconLight                  // 电灯
	IconFaucet                 // 水龙头
	IconPlug                   // 插座
	IconKey                    // 钥匙

	iconCount // 哨兵值，始终放在最后
)

// Valid 判断编码是否落在图标集范围内
func (c IconCode) Valid() bool {
	return c >= 0 && c < iconCount
}

// Icon 图标集中的一项，供图标选择器展示
type Icon struct {
	Code  IconCode `json:"code"`
	Name  string   `json:"name"`
	Label string   `json:"label"`
}

// AllIcons 返回完整的固定图标集，顺序与编码一致
func AllIcons() []Icon {
	return []Icon{
		{Code: IconIron, Name: "iron", Label: "电熨斗"},
		{Code: IconDoor, Name: "door", Label: "房门"},
		{Code: IconWindow, Name: "window", Label: "窗户"},
		{Code: IconStove, Name: "stove", Label: "燃气灶"},
		{Code: IconLight, Name: "light", Label: "电灯"},
		{Code: IconFaucet, Name: "faucet", Label: "水龙头"},
		{Code: IconPlug, Name: "plug", Label: "插座"},
		{Code: IconKey, Name: "key", Label: "钥匙"},
	}
}
