package reports

import "fmt"

// EntityDimension selects which party of an order becomes the record's entity key.
type EntityDimension int

const (
	EntityProvider EntityDimension = iota
	EntityCustomer
)

// SectionSpec configures one table of a report.
type SectionSpec struct {
	Heading string
	GroupBy GroupBy
	Columns []ColumnSpec
}

// Definition binds a report type to its grouping and layout.
type Definition struct {
	Type     ReportType
	Title    string
	Entity   EntityDimension
	Sections []SectionSpec
}

// DefinitionFor returns the catalog entry for t.
func DefinitionFor(t ReportType) (Definition, error) {
	switch t {
	case ReportRevenue:
		return Definition{
			Type:   t,
			Title:  "Revenue Report",
			Entity: EntityProvider,
			Sections: []SectionSpec{
				{Heading: "Daily Revenue", GroupBy: GroupByDate, Columns: []ColumnSpec{
					KeyColumn("Date"), CountColumn("Orders"), AmountColumn("Revenue"),
				}},
				{Heading: "Revenue by Provider", GroupBy: GroupByEntity, Columns: []ColumnSpec{
					KeyColumn("Provider"), CountColumn("Orders"), AmountColumn("Revenue"), AverageColumn("Avg. Order"),
				}},
				{Heading: "Revenue by Service", GroupBy: GroupByService, Columns: []ColumnSpec{
					KeyColumn("Service"), CountColumn("Orders"), AmountColumn("Revenue"),
				}},
			},
		}, nil
	case ReportOrders:
		return Definition{
			Type:   t,
			Title:  "Orders Report",
			Entity: EntityProvider,
			Sections: []SectionSpec{
				{Heading: "Orders by Date", GroupBy: GroupByDate, Columns: []ColumnSpec{
					KeyColumn("Date"), CountColumn("Orders"), AmountColumn("Order Value"),
				}},
				{Heading: "Orders by Status", GroupBy: GroupByStatus, Columns: []ColumnSpec{
					KeyColumn("Status"), CountColumn("Orders"), AmountColumn("Order Value"),
				}},
			},
		}, nil
	case ReportProviders:
		return Definition{
			Type:   t,
			Title:  "Provider Performance Report",
			Entity: EntityProvider,
			Sections: []SectionSpec{
				{Heading: "Provider Performance", GroupBy: GroupByEntity, Columns: []ColumnSpec{
					KeyColumn("Provider"), CountColumn("Orders"), AmountColumn("Revenue"), AverageColumn("Avg. Order"),
				}},
			},
		}, nil
	case ReportCustomers:
		return Definition{
			Type:   t,
			Title:  "Customer Activity Report",
			Entity: EntityCustomer,
			Sections: []SectionSpec{
				{Heading: "Customer Activity", GroupBy: GroupByEntity, Columns: []ColumnSpec{
					KeyColumn("Customer"), CountColumn("Orders"), AmountColumn("Spend"), AverageColumn("Avg. Order"),
				}},
			},
		}, nil
	case ReportServices:
		return Definition{
			Type:   t,
			Title:  "Service Breakdown Report",
			Entity: EntityProvider,
			Sections: []SectionSpec{
				{Heading: "Service Breakdown", GroupBy: GroupByService, Columns: []ColumnSpec{
					KeyColumn("Service"), CountColumn("Orders"), AmountColumn("Revenue"), AverageColumn("Avg. Order"),
				}},
			},
		}, nil
	default:
		return Definition{}, fmt.Errorf("%w: %q", ErrUnknownReportType, string(t))
	}
}
