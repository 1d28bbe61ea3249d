package fixture

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hairizuan-noorazman/visual-regression/order"
)

const (
	usersFileName   = "test_users.json"
	ordersFileName  = "test_orders.json"
	sessionFileName = "test_session.json"
)

// sessionInfo records when and for which environment a fixture set was
// written.
type sessionInfo struct {
	CreatedAt   time.Time `json:"created_at"`
	Environment string    `json:"environment"`
	UsersCount  int       `json:"users_count"`
	OrdersCount int       `json:"orders_count"`
}

// Files reads and writes fixture sets under a fixtures directory.
type Files struct {
	dir string
	env string
}

// NewFiles creates the fixtures directory if needed.
func NewFiles(dir, env string) (*Files, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("unable to create fixtures directory: %w", err)
	}
	return &Files{dir: dir, env: env}, nil
}

// Save writes the set to test_users.json, test_orders.json and
// test_session.json.
func (f *Files) Save(set Set) error {
	if err := writeJSON(filepath.Join(f.dir, usersFileName), set.Users); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(f.dir, ordersFileName), set.Orders); err != nil {
		return err
	}
	return writeJSON(filepath.Join(f.dir, sessionFileName), sessionInfo{
		CreatedAt:   time.Now(),
		Environment: f.env,
		UsersCount:  len(set.Users),
		OrdersCount: len(set.Orders),
	})
}

// Load reads a previously saved set. Missing files yield empty slices rather
// than errors, matching a directory that was never generated into.
func (f *Files) Load() (Set, error) {
	var set Set
	if err := readJSON(filepath.Join(f.dir, usersFileName), &set.Users); err != nil {
		return set, err
	}
	if err := readJSON(filepath.Join(f.dir, ordersFileName), &set.Orders); err != nil {
		return set, err
	}
	return set, nil
}

// Export bundles the set plus summary statistics into a single JSON file and
// returns its path. An empty outputPath gets a timestamped default name.
func (f *Files) Export(set Set, outputPath string) (string, error) {
	if len(set.Users) == 0 && len(set.Orders) == 0 {
		return "", ErrNoFixtures
	}
	if outputPath == "" {
		outputPath = filepath.Join(f.dir, "test_data_export_"+time.Now().Format("20060102_150405")+".json")
	}

	type dateRange struct {
		Start string `json:"start"`
		End   string `json:"end"`
	}
	type exportDoc struct {
		ExportInfo struct {
			CreatedAt   time.Time `json:"created_at"`
			Environment string    `json:"environment"`
			Version     string    `json:"version"`
		} `json:"export_info"`
		Users      []TestUser  `json:"users"`
		Orders     []TestOrder `json:"orders"`
		Statistics struct {
			UsersCount    int                    `json:"users_count"`
			OrdersCount   int                    `json:"orders_count"`
			OrderStatuses map[order.Status]int   `json:"order_statuses"`
			DateRange     dateRange              `json:"date_range"`
		} `json:"statistics"`
	}

	var doc exportDoc
	doc.ExportInfo.CreatedAt = time.Now()
	doc.ExportInfo.Environment = f.env
	doc.ExportInfo.Version = "1.0"
	doc.Users = set.Users
	doc.Orders = set.Orders
	doc.Statistics.UsersCount = len(set.Users)
	doc.Statistics.OrdersCount = len(set.Orders)
	doc.Statistics.OrderStatuses = StatusDistribution(set.Orders)

	if start, end, ok := orderDateRange(set.Orders); ok {
		doc.Statistics.DateRange = dateRange{
			Start: start.Format(time.RFC3339),
			End:   end.Format(time.RFC3339),
		}
	}

	if err := writeJSON(outputPath, doc); err != nil {
		return "", err
	}
	return outputPath, nil
}

// StatusDistribution counts orders per status.
func StatusDistribution(orders []TestOrder) map[order.Status]int {
	out := map[order.Status]int{}
	for _, o := range orders {
		out[o.Status]++
	}
	return out
}

func orderDateRange(orders []TestOrder) (start, end time.Time, ok bool) {
	for _, o := range orders {
		if o.CreatedAt.IsZero() {
			continue
		}
		if !ok || o.CreatedAt.Before(start) {
			start = o.CreatedAt
		}
		if !ok || o.CreatedAt.After(end) {
			end = o.CreatedAt
		}
		ok = true
	}
	return start, end, ok
}

func writeJSON(path string, v interface{}) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("unable to write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func readJSON(path string, v interface{}) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("unable to read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("unable to parse %s: %w", filepath.Base(path), err)
	}
	return nil
}
