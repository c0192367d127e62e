package shipping

// Region groups prefectures sharing one flat shipping fee. The table is the
// authoritative fee schedule of the storefront: every prefecture appears in
// exactly one region, and fees are whole yen.
type Region struct {
	Name        string
	Prefectures []string
	Fee         int64
}

// regionTable is loaded once and never mutated. Scan order is the declared
// order, which keeps lookups deterministic for testing even though the
// regions partition the prefecture set.
var regionTable = []Region{
	{
		Name:        "北海道",
		Prefectures: []string{"北海道"},
		Fee:         1000,
	},
	{
		Name:        "東北",
		Prefectures: []string{"青森県", "岩手県", "宮城県", "秋田県", "山形県", "福島県"},
		Fee:         350,
	},
	{
		Name:        "関東",
		Prefectures: []string{"茨城県", "栃木県", "群馬県", "埼玉県", "千葉県", "東京都", "神奈川県", "山梨県"},
		Fee:         600,
	},
	{
		Name:        "中部",
		Prefectures: []string{"新潟県", "富山県", "石川県", "福井県", "長野県", "岐阜県", "静岡県", "愛知県"},
		Fee:         250,
	},
	{
		Name:        "近畿",
		Prefectures: []string{"三重県", "滋賀県", "京都府", "大阪府", "兵庫県", "奈良県", "和歌山県"},
		Fee:         250,
	},
	{
		Name:        "中国",
		Prefectures: []string{"鳥取県", "島根県", "岡山県", "広島県", "山口県"},
		Fee:         200,
	},
	{
		Name:        "四国",
		Prefectures: []string{"徳島県", "香川県", "愛媛県", "高知県"},
		Fee:         200,
	},
	{
		// Local to the sellers; shipping is free.
		Name:        "九州・熊本",
		Prefectures: []string{"福岡県", "佐賀県", "長崎県", "熊本県", "大分県", "宮崎県", "鹿児島県"},
		Fee:         0,
	},
	{
		Name:        "沖縄",
		Prefectures: []string{"沖縄県"},
		Fee:         400,
	},
}

// Regions returns the fee table in scan order.
func Regions() []Region {
	out := make([]Region, len(regionTable))
	copy(out, regionTable)
	return out
}
