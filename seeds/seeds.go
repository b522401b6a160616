// Package seeds generates a deterministic demo catalog and loads it into
// Postgres or a JSON file.
package seeds

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/actuallystonmai/catalog-recommender/internal/domain"
)

const insertBatchSize = 200

type template struct {
	category    string
	subcategory string
	nameEN      string
	nameFR      string
	nameAR      string
	priceRange  [2]float64
	tags        []string
	medical     *domain.MedicalConditions
	skin        *domain.SkinConditions
	nutrition   *domain.NutritionalInfo
	ageRange    []string
	gender      []string
	hairTypes   []string
	problems    []string
}

var variants = []struct{ en, fr string }{
	{"Classic", "Classique"},
	{"Plus", "Plus"},
	{"Gentle", "Doux"},
	{"Pro", "Pro"},
	{"Daily", "Quotidien"},
	{"Intense", "Intense"},
}

var templates = []template{
	{
		category: "beauty_skincare", subcategory: "moisturizer",
		nameEN: "Oil Control Moisturizer", nameFR: "Hydratant Matifiant", nameAR: "مرطب للتحكم في الزيوت",
		priceRange: [2]float64{1200, 3500},
		tags:       []string{"oil_free", "non_comedogenic", "fragrance_free"},
		skin:       &domain.SkinConditions{SuitableFor: []string{"oily", "combination", "acne_prone"}, AvoidIf: []string{"very_dry"}},
		problems:   []string{"shine", "acne"},
	},
	{
		category: "beauty_skincare", subcategory: "cream",
		nameEN: "Rich Repair Cream", nameFR: "Crème Réparatrice Riche", nameAR: "كريم الإصلاح الغني",
		priceRange: [2]float64{1800, 4800},
		tags:       []string{"shea_butter", "fragrance"},
		skin:       &domain.SkinConditions{SuitableFor: []string{"dry", "very_dry"}, AvoidIf: []string{"oily", "acne_prone"}},
		problems:   []string{"dryness", "hydration"},
	},
	{
		category: "beauty_skincare", subcategory: "serum",
		nameEN: "Niacinamide Serum", nameFR: "Sérum Niacinamide", nameAR: "سيروم النياسيناميد",
		priceRange: [2]float64{2200, 5500},
		tags:       []string{"vegan", "paraben_free", "fragrance_free"},
		skin:       &domain.SkinConditions{SuitableFor: []string{"oily", "sensitive", "combination"}},
		medical:    &domain.MedicalConditions{SafeFor: []string{"pregnancy"}},
		problems:   []string{"acne", "dark_spots"},
		ageRange:   []string{"18-45"},
	},
	{
		category: "beauty_skincare", subcategory: "treatment",
		nameEN: "Retinol Night Treatment", nameFR: "Soin de Nuit au Rétinol", nameAR: "علاج ليلي بالريتينول",
		priceRange: [2]float64{3500, 7500},
		tags:       []string{"retinol", "anti_aging"},
		skin:       &domain.SkinConditions{SuitableFor: []string{"normal", "combination"}, AvoidIf: []string{"sensitive"}},
		medical:    &domain.MedicalConditions{AvoidIf: []string{"pregnancy", "breastfeeding"}},
		problems:   []string{"wrinkles", "anti_aging"},
		ageRange:   []string{"30+"},
	},
	{
		category: "hair_care", subcategory: "shampoo",
		nameEN: "Curl Defining Shampoo", nameFR: "Shampooing Boucles", nameAR: "شامبو لتحديد التموجات",
		priceRange: [2]float64{800, 2200},
		tags:       []string{"sulfate_free", "silicone_free"},
		hairTypes:  []string{"curly", "wavy", "frizzy"},
		problems:   []string{"frizz", "dryness"},
	},
	{
		category: "hair_care", subcategory: "treatment",
		nameEN: "Anti Hair Loss Lotion", nameFR: "Lotion Antichute", nameAR: "لوشن ضد تساقط الشعر",
		priceRange: [2]float64{1500, 4000},
		tags:       []string{"caffeine"},
		hairTypes:  []string{"thin", "straight"},
		problems:   []string{"hair_loss"},
		gender:     []string{"male"},
		ageRange:   []string{"25+"},
	},
	{
		category: "health_supplements", subcategory: "vitamins",
		nameEN: "Prenatal Folic Acid", nameFR: "Acide Folique Prénatal", nameAR: "حمض الفوليك قبل الولادة",
		priceRange: [2]float64{900, 2500},
		tags:       []string{"gluten_free"},
		medical:    &domain.MedicalConditions{EssentialFor: []string{"pregnancy"}, SafeFor: []string{"breastfeeding"}},
		nutrition:  &domain.NutritionalInfo{SugarContent: 0, KeyNutrients: []string{"folic_acid", "iron"}},
		gender:     []string{"female"},
		ageRange:   []string{"18-45"},
	},
	{
		category: "health_supplements", subcategory: "minerals",
		nameEN: "Magnesium Complex", nameFR: "Complexe de Magnésium", nameAR: "مركب المغنيسيوم",
		priceRange: [2]float64{700, 2000},
		tags:       []string{"vegan", "sugar_free"},
		medical:    &domain.MedicalConditions{BeneficialFor: []string{"diabetes", "hypertension"}, ConsultDoctor: []string{"kidney_disease"}},
		nutrition:  &domain.NutritionalInfo{SugarContent: 0, KeyNutrients: []string{"magnesium"}},
		problems:   []string{"fatigue", "cramps"},
	},
	{
		category: "health_supplements", subcategory: "gummies",
		nameEN: "Vitamin C Gummies", nameFR: "Gommes Vitamine C", nameAR: "حلوى فيتامين سي",
		priceRange: [2]float64{600, 1600},
		tags:       []string{"gelatin", "sugar"},
		medical:    &domain.MedicalConditions{AvoidIf: []string{"diabetes"}},
		nutrition:  &domain.NutritionalInfo{SugarContent: 4.5, KeyNutrients: []string{"vitamin_c"}},
		problems:   []string{"immunity"},
	},
	{
		category: "food_nutrition", subcategory: "snacks",
		nameEN: "Sugar Free Oat Bar", nameFR: "Barre d'Avoine Sans Sucre", nameAR: "لوح الشوفان بدون سكر",
		priceRange: [2]float64{150, 450},
		tags:       []string{"sugar_free", "high_fiber"},
		medical:    &domain.MedicalConditions{BeneficialFor: []string{"diabetes"}, SafeFor: []string{"hypertension"}},
		nutrition:  &domain.NutritionalInfo{SugarContent: 0.5, KeyNutrients: []string{"fiber"}},
	},
	{
		category: "food_nutrition", subcategory: "spreads",
		nameEN: "Date Honey Spread", nameFR: "Pâte de Dattes au Miel", nameAR: "دبس التمر بالعسل",
		priceRange: [2]float64{400, 1200},
		tags:       []string{"honey", "natural"},
		medical:    &domain.MedicalConditions{AvoidIf: []string{"diabetes"}},
		nutrition:  &domain.NutritionalInfo{SugarContent: 38},
	},
	{
		category: "baby_care", subcategory: "lotion",
		nameEN: "Baby Calming Lotion", nameFR: "Lait Apaisant Bébé", nameAR: "لوشن مهدئ للأطفال",
		priceRange: [2]float64{900, 2400},
		tags:       []string{"fragrance_free", "hypoallergenic", "paraben_free"},
		skin:       &domain.SkinConditions{SuitableFor: []string{"sensitive", "eczema", "dry"}},
		ageRange:   []string{"0-3"},
	},
}

// Generate builds n products deterministically from seed. Templates are
// cycled so that every category is represented even for small n.
func Generate(n int, seed int64) []*domain.Product {
	rng := rand.New(rand.NewSource(seed))
	products := make([]*domain.Product, 0, n)

	for i := range n {
		t := templates[i%len(templates)]
		v := variants[(i/len(templates))%len(variants)]

		p := &domain.Product{
			ID:                fmt.Sprintf("P%05d", i+1),
			Name:              t.nameEN + " " + v.en,
			NameFR:            t.nameFR + " " + v.fr,
			NameAR:            t.nameAR,
			Description:       fmt.Sprintf("%s for %s.", t.nameEN, describe(t)),
			DescriptionFR:     t.nameFR + ".",
			Category:          t.category,
			Subcategory:       t.subcategory,
			Price:             roundPrice(t.priceRange[0] + rng.Float64()*(t.priceRange[1]-t.priceRange[0])),
			Currency:          "DA",
			Tags:              t.tags,
			Stock:             stockLevel(rng),
			Popularity:        powerLawScore(rng),
			Recency:           math.Round(rng.Float64()*100) / 100,
			Personal:          math.Round(rng.Float64()*50) / 100,
			SellerBoost:       math.Round(rng.Float64()*25) / 100,
			MedicalConditions: t.medical,
			SkinConditions:    t.skin,
			NutritionalInfo:   t.nutrition,
			AgeRange:          t.ageRange,
			Gender:            t.gender,
			HairTypes:         t.hairTypes,
			ProblemsSolved:    t.problems,
		}
		// Clone so products never share slices with the templates.
		products = append(products, p.Clone())
	}
	return products
}

func describe(t template) string {
	switch {
	case t.skin != nil:
		return strings.ReplaceAll(strings.Join(t.skin.SuitableFor, ", "), "_", " ") + " skin"
	case len(t.hairTypes) > 0:
		return strings.Join(t.hairTypes, ", ") + " hair"
	case len(t.problems) > 0:
		return strings.ReplaceAll(strings.Join(t.problems, ", "), "_", " ")
	default:
		return "everyday use"
	}
}

// One product in ten is out of stock.
func stockLevel(rng *rand.Rand) int {
	level := weightedChoice(rng, []string{"out", "low", "normal"}, []float64{0.1, 0.3, 0.6})
	switch level {
	case "out":
		return 0
	case "low":
		return rng.Intn(5) + 1
	default:
		return rng.Intn(95) + 6
	}
}

func roundPrice(v float64) float64 {
	return math.Round(v/50) * 50
}

// WriteJSON writes products as an indented JSON array.
func WriteJSON(path string, products []*domain.Product) error {
	raw, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal products: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Setup truncates the products table and inserts products in batches.
func Setup(ctx context.Context, pool *pgxpool.Pool, products []*domain.Product, logger zerolog.Logger) error {
	logger.Info().Msg("truncating existing products")
	if _, err := pool.Exec(ctx, `TRUNCATE products RESTART IDENTITY`); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}

	for start := 0; start < len(products); start += insertBatchSize {
		end := min(start+insertBatchSize, len(products))
		if err := insertProducts(ctx, pool, products[start:end]); err != nil {
			return fmt.Errorf("seed products %d-%d: %w", start, end, err)
		}
	}
	logger.Info().Int("products", len(products)).Msg("seeding complete")
	return nil
}

func insertProducts(ctx context.Context, pool *pgxpool.Pool, products []*domain.Product) error {
	const cols = 25
	rows := make([]string, 0, len(products))
	args := make([]any, 0, len(products)*cols)

	for _, p := range products {
		base := len(args)
		ph := make([]string, cols)
		for j := range ph {
			ph[j] = fmt.Sprintf("$%d", base+j+1)
		}
		rows = append(rows, "("+strings.Join(ph, ", ")+")")
		args = append(args,
			p.ID, p.Name, nullable(p.NameFR), nullable(p.NameAR), p.Description, nullable(p.DescriptionFR), nullable(p.DescriptionAR),
			p.Category, nullable(p.Subcategory), p.Price, nullable(p.Currency), nullable(p.Image), nonNil(p.Tags), p.Stock,
			p.Popularity, p.Recency, p.Personal, p.SellerBoost,
			p.MedicalConditions, p.SkinConditions, p.NutritionalInfo,
			p.AgeRange, p.Gender, p.HairTypes, p.ProblemsSolved,
		)
	}
	if len(rows) == 0 {
		return nil
	}

	query := `INSERT INTO products (id, name, name_fr, name_ar, description, description_fr, description_ar,
		category, subcategory, price, currency, image, tags, stock,
		popularity, recency, personal, seller_boost,
		medical_conditions, skin_conditions, nutritional_info,
		age_range, gender, hair_types, problems_solved) VALUES ` + strings.Join(rows, ", ")

	_, err := pool.Exec(ctx, query, args...)
	return err
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func powerLawScore(rng *rand.Rand) float64 {
	u := rng.Float64()
	if u == 0 {
		u = 0.001
	}
	raw := math.Pow(u, 2.0)
	if raw < 0.01 {
		raw = 0.01
	}
	return math.Round(raw*100) / 100
}

func weightedChoice(rng *rand.Rand, choices []string, weights []float64) string {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	r := rng.Float64() * total
	cumulative := 0.0
	for i, w := range weights {
		cumulative += w
		if r <= cumulative {
			return choices[i]
		}
	}
	return choices[len(choices)-1]
}
