package model

// Tables lists every entity for schema migration, parents before children.
var Tables = []interface{}{
	&Category{},
	&Product{},
	&ProductVariant{},
	&Asset{},
	&User{},
	&Address{},
	&Order{},
	&OrderItem{},
	&Payment{},
	&Wishlist{},
	&WishlistItem{},
}
