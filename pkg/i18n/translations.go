package i18n

var supportedLangs = map[string]struct{}{"en": {}, "pt": {}, "es": {}}

// translations maps message key -> language -> format string
var translations = map[string]map[string]string{
	// %d = recalculated expenses
	"currency.migrated": {
		"en": "Currency updated, %d expenses recalculated",
		"pt": "Moeda atualizada, %d despesas recalculadas",
		"es": "Moneda actualizada, %d gastos recalculados",
	},
	// %d = failed, %d = total
	"currency.migrated.partial": {
		"en": "Currency updated, but %d of %d expenses could not be recalculated",
		"pt": "Moeda atualizada, mas %d de %d despesas não puderam ser recalculadas",
		"es": "Moneda actualizada, pero %d de %d gastos no pudieron recalcularse",
	},
	"preferences.updated": {
		"en": "Preferences updated",
		"pt": "Preferências atualizadas",
		"es": "Preferencias actualizadas",
	},
	"expense.created": {
		"en": "Expense created, category pending",
		"pt": "Despesa criada, categoria pendente",
		"es": "Gasto creado, categoría pendiente",
	},
	"expense.deleted": {
		"en": "Expense deleted",
		"pt": "Despesa excluída",
		"es": "Gasto eliminado",
	},
	"category.deleted": {
		"en": "Category deleted",
		"pt": "Categoria excluída",
		"es": "Categoría eliminada",
	},
}
