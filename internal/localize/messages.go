package localize

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message/catalog"
)

// Message keys are the English texts.
const (
	msgSkin           = "Suitable for %s skin"
	msgHair           = "Suitable for %s hair"
	msgBeneficial     = "Beneficial for %s"
	msgEssential      = "Essential for %s"
	msgSafeFor        = "Safe for %s"
	msgNeeds          = "Helps with %s"
	msgWithinBudget   = "Within your budget (%s)"
	msgNearBudget     = "Slightly above your budget (%s)"
	msgPreferences    = "Matches your preferences: %s"
	msgFallbackReason = "Recommended %s product"
	msgConsultDoctor  = "Consult doctor: %s"
	msgNoMatch        = "No products match your criteria. Try relaxing some constraints."
	msgBudgetNone     = "No products found within your budget of %s. The cheapest available option costs %s."
	msgBudgetNoneHint = "Consider increasing your budget to at least %s."
	msgBudgetCut      = "%d products were excluded for costing more than 50%% above your budget."
	msgBudgetTierCut  = "%d products were excluded for exceeding the %s budget range."
	msgBudgetCutHint  = "Increase your budget to see more options."
	msgLowResults     = "Only %d products matched your criteria after safety and compatibility filtering."
	msgLowResultsHint = "Try relaxing some constraints to see more options."
	msgMedicalWarning = "This product requires medical consultation for: %s"
	msgMedicalHint    = "Talk to your doctor before using this product."
	msgDegraded       = "Semantic search was unavailable; results come from keyword matching."
	msgDegradedHint   = "Results may be less relevant than usual."
)

var translations = map[language.Tag]map[string]string{
	language.French: {
		msgSkin:           "Adapté aux peaux %s",
		msgHair:           "Adapté aux cheveux %s",
		msgBeneficial:     "Bénéfique pour %s",
		msgEssential:      "Essentiel pour %s",
		msgSafeFor:        "Sans danger pour %s",
		msgNeeds:          "Aide contre %s",
		msgWithinBudget:   "Dans votre budget (%s)",
		msgNearBudget:     "Légèrement au-dessus de votre budget (%s)",
		msgPreferences:    "Correspond à vos préférences : %s",
		msgFallbackReason: "Produit %s recommandé",
		msgConsultDoctor:  "Consultez un médecin : %s",
		msgNoMatch:        "Aucun produit ne correspond à vos critères. Essayez d'assouplir certaines contraintes.",
		msgBudgetNone:     "Aucun produit trouvé dans votre budget de %s. L'option la moins chère coûte %s.",
		msgBudgetNoneHint: "Envisagez d'augmenter votre budget à au moins %s.",
		msgBudgetCut:      "%d produits ont été exclus car ils dépassent votre budget de plus de 50 %%.",
		msgBudgetTierCut:  "%d produits ont été exclus car ils dépassent la gamme de budget %s.",
		msgBudgetCutHint:  "Augmentez votre budget pour voir plus d'options.",
		msgLowResults:     "Seulement %d produits correspondent à vos critères après le filtrage de sécurité et de compatibilité.",
		msgLowResultsHint: "Assouplissez certaines contraintes pour voir plus d'options.",
		msgMedicalWarning: "Ce produit nécessite un avis médical pour : %s",
		msgMedicalHint:    "Parlez-en à votre médecin avant d'utiliser ce produit.",
		msgDegraded:       "La recherche sémantique était indisponible ; les résultats proviennent d'une recherche par mots-clés.",
		msgDegradedHint:   "Les résultats peuvent être moins pertinents que d'habitude.",
	},
	language.Arabic: {
		msgSkin:           "مناسب للبشرة %s",
		msgHair:           "مناسب للشعر %s",
		msgBeneficial:     "مفيد لـ %s",
		msgEssential:      "ضروري لـ %s",
		msgSafeFor:        "آمن لـ %s",
		msgNeeds:          "يساعد في %s",
		msgWithinBudget:   "ضمن ميزانيتك (%s)",
		msgNearBudget:     "أعلى قليلاً من ميزانيتك (%s)",
		msgPreferences:    "يطابق تفضيلاتك: %s",
		msgFallbackReason: "منتج %s موصى به",
		msgConsultDoctor:  "استشر الطبيب: %s",
		msgNoMatch:        "لا توجد منتجات تطابق معاييرك. حاول تخفيف بعض القيود.",
		msgBudgetNone:     "لم يتم العثور على منتجات ضمن ميزانيتك البالغة %s. أرخص خيار متاح سعره %s.",
		msgBudgetNoneHint: "فكر في زيادة ميزانيتك إلى %s على الأقل.",
		msgBudgetCut:      "تم استبعاد %d منتجات لأن سعرها يتجاوز ميزانيتك بأكثر من 50%%.",
		msgBudgetTierCut:  "تم استبعاد %d منتجات لتجاوزها نطاق الميزانية %s.",
		msgBudgetCutHint:  "زد ميزانيتك لرؤية المزيد من الخيارات.",
		msgLowResults:     "تطابق %d منتجات فقط مع معاييرك بعد تصفية السلامة والتوافق.",
		msgLowResultsHint: "خفف بعض القيود لرؤية المزيد من الخيارات.",
		msgMedicalWarning: "يتطلب هذا المنتج استشارة طبية بخصوص: %s",
		msgMedicalHint:    "تحدث إلى طبيبك قبل استخدام هذا المنتج.",
		msgDegraded:       "البحث الدلالي غير متاح؛ النتائج مأخوذة من البحث بالكلمات المفتاحية.",
		msgDegradedHint:   "قد تكون النتائج أقل صلة من المعتاد.",
	},
}

func newCatalog() (catalog.Catalog, error) {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, msgs := range translations {
		for key, text := range msgs {
			if err := b.SetString(tag, key, text); err != nil {
				return nil, err
			}
		}
	}
	return b, nil
}
