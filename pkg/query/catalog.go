package query

// NamedQuery is one entry of the fixed analytical catalog.
type NamedQuery struct {
	Name string
	SQL  string
}

// Catalog returns the three benchmark queries in their fixed order.
// Every query runs against the `sales` relation registered by the
// engine, so the same SQL covers all three formats.
func Catalog() []NamedQuery {
	return []NamedQuery{
		{
			Name: "sales_by_store",
			SQL: `
				SELECT store_id, SUM(total) AS store_total
				FROM sales
				GROUP BY store_id
				ORDER BY store_total DESC
				LIMIT 10
			`,
		},
		{
			Name: "avg_spend_per_customer",
			SQL: `
				SELECT customer_id, AVG(total) AS avg_spend
				FROM sales
				GROUP BY customer_id
				ORDER BY avg_spend DESC
				LIMIT 10
			`,
		},
		{
			Name: "top_products_by_quantity",
			SQL: `
				SELECT product_id, SUM(quantity) AS units
				FROM sales
				GROUP BY product_id
				ORDER BY units DESC
				LIMIT 10
			`,
		},
	}
}

// QueryNames returns the catalog names in order. Report columns follow
// this order.
func QueryNames() []string {
	catalog := Catalog()
	names := make([]string, len(catalog))
	for i, q := range catalog {
		names[i] = q.Name
	}
	return names
}
