package domain

// FactoryProducts is the built-in school-fair catalog loaded on first
// start and on a factory reset.
func FactoryProducts() []Product {
	return []Product{
		{ID: "101", Name: "烤香腸", Price: 35, Category: "熱食", Barcode: "101", Stock: 100},
		{ID: "102", Name: "大腸包小腸", Price: 60, Category: "熱食", Barcode: "102", Stock: 50},
		{ID: "103", Name: "炒米粉", Price: 50, Category: "熱食", Barcode: "103", Stock: 50},
		{ID: "104", Name: "貢丸湯", Price: 30, Category: "熱食", Barcode: "104", Stock: 80},
		{ID: "105", Name: "鹹酥雞", Price: 80, Category: "熱食", Barcode: "105", Stock: 40},
		{ID: "106", Name: "章魚燒", Price: 60, Category: "熱食", Barcode: "106", Stock: 40},
		{ID: "107", Name: "滷味拼盤", Price: 100, Category: "熱食", Barcode: "107", Stock: 30},
		{ID: "108", Name: "烤玉米", Price: 70, Category: "熱食", Barcode: "108", Stock: 50},
		{ID: "201", Name: "古早味紅茶", Price: 25, Category: "飲料", Barcode: "201", Stock: 200},
		{ID: "202", Name: "珍珠奶茶", Price: 50, Category: "飲料", Barcode: "202", Stock: 100},
		{ID: "203", Name: "冬瓜檸檬", Price: 40, Category: "飲料", Barcode: "203", Stock: 100},
		{ID: "204", Name: "彈珠汽水", Price: 30, Category: "飲料", Barcode: "204", Stock: 60},
		{ID: "205", Name: "鮮榨柳橙汁", Price: 60, Category: "飲料", Barcode: "205", Stock: 50},
		{ID: "206", Name: "礦泉水", Price: 10, Category: "飲料", Barcode: "206", Stock: 120},
		{ID: "207", Name: "運動飲料", Price: 25, Category: "飲料", Barcode: "207", Stock: 60},
		{ID: "301", Name: "雞蛋糕", Price: 40, Category: "點心", Barcode: "301", Stock: 80},
		{ID: "302", Name: "霜淇淋", Price: 35, Category: "點心", Barcode: "302", Stock: 100},
		{ID: "303", Name: "棉花糖", Price: 30, Category: "點心", Barcode: "303", Stock: 50},
		{ID: "304", Name: "爆米花", Price: 40, Category: "點心", Barcode: "304", Stock: 50},
		{ID: "305", Name: "糖葫蘆", Price: 35, Category: "點心", Barcode: "305", Stock: 40},
		{ID: "306", Name: "車輪餅", Price: 20, Category: "點心", Barcode: "306", Stock: 80},
		{ID: "401", Name: "套圈圈(1局)", Price: 50, Category: "遊戲", Barcode: "401", Stock: 999},
		{ID: "402", Name: "撈金魚", Price: 50, Category: "遊戲", Barcode: "402", Stock: 999},
		{ID: "403", Name: "射氣球", Price: 100, Category: "遊戲", Barcode: "403", Stock: 999},
		{ID: "404", Name: "抽抽樂", Price: 10, Category: "遊戲", Barcode: "404", Stock: 200},
		{ID: "405", Name: "打彈珠", Price: 20, Category: "遊戲", Barcode: "405", Stock: 999},
		{ID: "406", Name: "DIY 手作包", Price: 150, Category: "其他", Barcode: "406", Stock: 20},
		{ID: "407", Name: "紀念徽章", Price: 30, Category: "其他", Barcode: "407", Stock: 50},
	}
}

// DemoProducts seeds the demo namespace with the factory list at reduced
// stock levels so training mode sells out quickly.
func DemoProducts() []Product {
	products := FactoryProducts()
	for i := range products {
		if products[i].Stock > 10 {
			products[i].Stock = 10
		}
	}
	return products
}
