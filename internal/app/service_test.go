package service_test

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/salespulse/internal/adapters/chart"
	"github.com/okian/salespulse/internal/adapters/ingest"
	"github.com/okian/salespulse/internal/adapters/repository"
	service "github.com/okian/salespulse/internal/app"
	"github.com/okian/salespulse/pkg/logger"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

const referenceCSV = `order_id,order_date,product_id,price,quantity
1,2025-01-01,A,10,2
1,2025-01-01,B,5,1
2,2025-01-02,A,10,1
`

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orders.csv")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return path
}

func fixedClock() time.Time {
	return time.Date(2025, 2, 1, 8, 30, 0, 0, time.UTC)
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should have sensible defaults", func() {
			So(svc, ShouldNotBeNil)
			stats := svc.GetStats()
			So(stats["source"], ShouldEqual, "ecommerce_sales.csv")
			So(stats["top_n"], ShouldEqual, 10)
			So(stats["ready"], ShouldEqual, false)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithInputPath("other.csv"),
			service.WithTopN(3),
			service.WithHeadRows(2),
			service.WithMissingPolicy(ingest.PolicyFail),
			service.WithChartSize(400, 300),
			service.WithLogger(logger.NewNop()),
		)

		Convey("Then the options are applied", func() {
			stats := svc.GetStats()
			So(stats["source"], ShouldEqual, "other.csv")
			So(stats["top_n"], ShouldEqual, 3)
		})
	})
}

func TestService_Run(t *testing.T) {
	Convey("Given the reference input", t, func() {
		store := repository.NewSnapshotStore()
		svc := service.New(
			service.WithInputPath(writeInput(t, referenceCSV)),
			service.WithStore(store),
			service.WithClock(fixedClock),
			service.WithChartSize(400, 300),
		)
		ctx := context.Background()

		Convey("When the pipeline runs", func() {
			var out bytes.Buffer
			report, err := svc.Run(ctx, &out)
			So(err, ShouldBeNil)

			Convey("Then the report holds both aggregations", func() {
				So(report.GeneratedAt, ShouldEqual, fixedClock())
				So(report.LineCount, ShouldEqual, 3)
				So(report.DroppedRows, ShouldEqual, 0)
				So(report.TotalRevenue.String(), ShouldEqual, "35")

				So(report.Daily, ShouldHaveLength, 2)
				So(report.Daily[0].TotalOrders, ShouldEqual, 1)
				So(report.Daily[0].TotalRevenue.String(), ShouldEqual, "25")
				So(report.Daily[0].TotalQuantity, ShouldEqual, 3)
				So(report.Daily[1].TotalRevenue.String(), ShouldEqual, "10")

				So(report.TopProducts, ShouldHaveLength, 2)
				So(report.TopProducts[0].ProductID, ShouldEqual, "A")
				So(report.TopProducts[0].TotalRevenue.String(), ShouldEqual, "30")
				So(report.TopProducts[1].ProductID, ShouldEqual, "B")
			})

			Convey("And the dumps and tables are printed", func() {
				text := out.String()
				So(text, ShouldContainSubstring, "Columns: [order_id order_date product_id price quantity]")
				So(text, ShouldContainSubstring, "Missing values:")
				So(text, ShouldContainSubstring, "Sample data:")
				So(text, ShouldContainSubstring, "Daily Sales Summary:")
				So(text, ShouldContainSubstring, "Top 10 Products by Revenue:")
				So(text, ShouldContainSubstring, "2025-01-02")
			})

			Convey("And both charts are rendered", func() {
				charts := svc.Charts()
				img, err := png.Decode(bytes.NewReader(charts.DailyRevenue))
				So(err, ShouldBeNil)
				So(img.Bounds().Dx(), ShouldEqual, 400)
				_, err = png.Decode(bytes.NewReader(charts.TopProducts))
				So(err, ShouldBeNil)

				b, err := svc.Chart(ctx, chart.TopProducts)
				So(err, ShouldBeNil)
				So(b, ShouldResemble, charts.TopProducts)
			})

			Convey("And the report is published", func() {
				latest, err := store.Latest(ctx)
				So(err, ShouldBeNil)
				So(latest, ShouldEqual, report)

				entry, err := svc.Rank(ctx, "B")
				So(err, ShouldBeNil)
				So(entry.Rank, ShouldEqual, 2)
				So(entry.TotalRevenue, ShouldEqual, "5.00")

				top, err := svc.TopN(ctx, 1)
				So(err, ShouldBeNil)
				So(top, ShouldHaveLength, 1)
				So(top[0].ProductID, ShouldEqual, "A")

				daily, err := svc.DailySummary(ctx)
				So(err, ShouldBeNil)
				So(daily[0].Date, ShouldEqual, "2025-01-01")
				So(daily[0].TotalRevenue, ShouldEqual, "25.00")

				stats := svc.GetStats()
				So(stats["ready"], ShouldEqual, true)
				So(stats["ranked_products"], ShouldEqual, 2)
				So(stats["total_revenue"], ShouldEqual, "35.00")
			})
		})
	})

	Convey("Given an input with only a header", t, func() {
		svc := service.New(
			service.WithInputPath(writeInput(t, "order_id,order_date,product_id,price,quantity\n")),
			service.WithLogger(logger.NewNop()),
		)

		Convey("Then the run succeeds with empty results and no charts", func() {
			var out bytes.Buffer
			report, err := svc.Run(context.Background(), &out)
			So(err, ShouldBeNil)
			So(report.Daily, ShouldBeEmpty)
			So(report.TopProducts, ShouldBeEmpty)
			So(svc.Charts().DailyRevenue, ShouldBeNil)

			_, err = svc.Chart(context.Background(), chart.DailyRevenue)
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})
	})

	Convey("Given rows with missing values", t, func() {
		input := referenceCSV + "3,2025-01-03,,4,1\n"

		Convey("When the drop policy is used", func() {
			svc := service.New(service.WithInputPath(writeInput(t, input)), service.WithLogger(logger.NewNop()))
			report, err := svc.Run(context.Background(), &bytes.Buffer{})

			Convey("Then the row is excluded and counted", func() {
				So(err, ShouldBeNil)
				So(report.LineCount, ShouldEqual, 3)
				So(report.DroppedRows, ShouldEqual, 1)
			})
		})

		Convey("When the fail policy is used", func() {
			svc := service.New(
				service.WithInputPath(writeInput(t, input)),
				service.WithMissingPolicy(ingest.PolicyFail),
				service.WithLogger(logger.NewNop()),
			)
			_, err := svc.Run(context.Background(), &bytes.Buffer{})

			Convey("Then the run fails with a malformed row error", func() {
				So(errors.Is(err, ingest.ErrMalformedRow), ShouldBeTrue)
			})
		})
	})

	Convey("Given a missing input file", t, func() {
		svc := service.New(
			service.WithInputPath(filepath.Join(t.TempDir(), "absent.csv")),
			service.WithLogger(logger.NewNop()),
		)

		Convey("Then the run fails and nothing is published", func() {
			_, err := svc.Run(context.Background(), &bytes.Buffer{})
			So(errors.Is(err, fs.ErrNotExist), ShouldBeTrue)
			So(svc.GetStats()["ready"], ShouldEqual, false)
		})
	})

	Convey("Given a file without a required column", t, func() {
		svc := service.New(
			service.WithInputPath(writeInput(t, "order_id,order_date,price,quantity\n1,2025-01-01,1,1\n")),
			service.WithLogger(logger.NewNop()),
		)

		Convey("Then the run fails with ErrMissingColumn", func() {
			_, err := svc.Run(context.Background(), &bytes.Buffer{})
			So(errors.Is(err, ingest.ErrMissingColumn), ShouldBeTrue)
		})
	})
}

func TestService_TopNLimit(t *testing.T) {
	Convey("Given a service configured for the top product only", t, func() {
		svc := service.New(
			service.WithInputPath(writeInput(t, referenceCSV)),
			service.WithTopN(1),
			service.WithLogger(logger.NewNop()),
		)
		var out bytes.Buffer
		report, err := svc.Run(context.Background(), &out)

		Convey("Then the ranking and title follow the limit", func() {
			So(err, ShouldBeNil)
			So(report.TopProducts, ShouldHaveLength, 1)
			So(out.String(), ShouldContainSubstring, "Top 1 Products by Revenue:")

			_, err := svc.Rank(context.Background(), "B")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})
	})
}
