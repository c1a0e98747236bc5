package catalog

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/RoyceAzure/lab/laptop_store/internal/domain/model"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var seed []byte

type template struct {
	Suffix      string          `yaml:"suffix"`
	Image       string          `yaml:"image"`
	Price       decimal.Decimal `yaml:"price"`
	Specs       []string        `yaml:"specs"`
	Description string          `yaml:"description"`
	Colors      []string        `yaml:"colors"`
	Stock       int             `yaml:"stock"`
	Rating      float64         `yaml:"rating"`
}

type seedFile struct {
	Brands    []model.Brand `yaml:"brands"`
	Templates []template    `yaml:"templates"`
}

// Repo 唯讀型錄, 建好之後不會再變動, 可多 goroutine 共用
type Repo struct {
	brands  []model.Brand
	laptops []model.Laptop
	byID    map[string]int
	byBrand map[string][]int
}

func NewRepo() (*Repo, error) {
	return Parse(seed)
}

// Parse 每個品牌 x 每個 template 產生一台, id 為 <brand>-<n>
func Parse(data []byte) (*Repo, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	r := &Repo{
		brands:  f.Brands,
		byID:    make(map[string]int),
		byBrand: make(map[string][]int),
	}
	for _, b := range f.Brands {
		brandID := strings.ToLower(b.ID)
		if _, dup := r.byBrand[brandID]; dup {
			return nil, fmt.Errorf("duplicate brand %q", b.ID)
		}
		display := displayName(brandID)
		r.byBrand[brandID] = []int{}
		for i, t := range f.Templates {
			laptop := model.Laptop{
				ID:          fmt.Sprintf("%s-%d", brandID, i+1),
				Brand:       display,
				Name:        display + " " + t.Suffix,
				Price:       t.Price,
				Specs:       append([]string(nil), t.Specs...),
				Image:       fmt.Sprintf("/laptops/%s-%s.jpg", brandID, t.Image),
				Description: t.Description,
				Colors:      append([]string(nil), t.Colors...),
				Stock:       t.Stock,
				Rating:      t.Rating,
			}
			if err := model.Validate(laptop); err != nil {
				return nil, fmt.Errorf("laptop %s: %w", laptop.ID, err)
			}
			r.byID[laptop.ID] = len(r.laptops)
			r.byBrand[brandID] = append(r.byBrand[brandID], len(r.laptops))
			r.laptops = append(r.laptops, laptop)
		}
	}
	return r, nil
}

// apple -> Apple
func displayName(slug string) string {
	if slug == "" {
		return slug
	}
	return strings.ToUpper(slug[:1]) + slug[1:]
}

func (r *Repo) Brands() []model.Brand {
	out := make([]model.Brand, len(r.brands))
	copy(out, r.brands)
	return out
}

// ByBrand 不分大小寫
func (r *Repo) ByBrand(brand string) ([]model.Laptop, bool) {
	idx, ok := r.byBrand[strings.ToLower(strings.TrimSpace(brand))]
	if !ok {
		return nil, false
	}
	out := make([]model.Laptop, 0, len(idx))
	for _, i := range idx {
		out = append(out, r.laptops[i])
	}
	return out, true
}

func (r *Repo) Find(id string) (model.Laptop, bool) {
	i, ok := r.byID[id]
	if !ok {
		return model.Laptop{}, false
	}
	return r.laptops[i], true
}

// Search name / brand / description 子字串比對, 空白查詢回傳空
func (r *Repo) Search(q string) []model.Laptop {
	q = strings.ToLower(strings.TrimSpace(q))
	out := []model.Laptop{}
	if q == "" {
		return out
	}
	for _, l := range r.laptops {
		if strings.Contains(strings.ToLower(l.Name), q) ||
			strings.Contains(strings.ToLower(l.Brand), q) ||
			strings.Contains(strings.ToLower(l.Description), q) {
			out = append(out, l)
		}
	}
	return out
}

func (r *Repo) Len() int {
	return len(r.laptops)
}
