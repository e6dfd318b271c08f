package services

import (
	"database/sql"
	"time"
)

type ReportService struct {
	db *sql.DB
}

func NewReportService(db *sql.DB) *ReportService {
	return &ReportService{db: db}
}

type DailySales struct {
	Date            string `json:"date"`
	TotalOrders     int    `json:"total_orders"`
	TotalSales      int64  `json:"total_sales"`
	UniqueCustomers int    `json:"unique_customers"`
}

type ProductSales struct {
	Name          string `json:"name"`
	TotalQuantity int    `json:"total_quantity"`
	TotalRevenue  int64  `json:"total_revenue"`
}

type SalesReport struct {
	Sales       []DailySales   `json:"sales"`
	TopProducts []ProductSales `json:"top_products"`
}

// GetSalesReport 日销售汇总 + 收入前十商品
func (s *ReportService) GetSalesReport(startDate, endDate string) (*SalesReport, error) {
	if startDate == "" {
		startDate = "2024-01-01"
	}
	if endDate == "" {
		endDate = time.Now().Format("2006-01-02 15:04:05")
	}

	rows, err := s.db.Query(
		`SELECT DATE(o.order_date), COUNT(DISTINCT o.id), COALESCE(SUM(o.total_amount), 0), COUNT(DISTINCT o.user_id)
		 FROM orders o
		 WHERE o.order_date BETWEEN ? AND ?
		 GROUP BY DATE(o.order_date)
		 ORDER BY DATE(o.order_date) DESC`,
		startDate, endDate,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	report := &SalesReport{Sales: []DailySales{}, TopProducts: []ProductSales{}}
	for rows.Next() {
		var d DailySales
		if err := rows.Scan(&d.Date, &d.TotalOrders, &d.TotalSales, &d.UniqueCustomers); err != nil {
			return nil, err
		}
		report.Sales = append(report.Sales, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	topRows, err := s.db.Query(
		`SELECT p.name, SUM(oi.quantity), SUM(oi.quantity * oi.unit_price)
		 FROM order_items oi
		 JOIN products p ON oi.product_id = p.id
		 JOIN orders o ON oi.order_id = o.id
		 WHERE o.order_date BETWEEN ? AND ?
		 GROUP BY p.id, p.name
		 ORDER BY SUM(oi.quantity * oi.unit_price) DESC
		 LIMIT 10`,
		startDate, endDate,
	)
	if err != nil {
		return nil, err
	}
	defer topRows.Close()
	for topRows.Next() {
		var p ProductSales
		if err := topRows.Scan(&p.Name, &p.TotalQuantity, &p.TotalRevenue); err != nil {
			return nil, err
		}
		report.TopProducts = append(report.TopProducts, p)
	}
	if err := topRows.Err(); err != nil {
		return nil, err
	}
	return report, nil
}
