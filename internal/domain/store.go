package domain

// Настройки магазина, используемые при создании прототипов документов.
const (
	SettingShipmentNumberTemplate = "Order.ShipmentNewNumberTemplate"
	SettingPaymentNumberTemplate  = "Order.PaymentInNewNumberTemplate"

	DefaultShipmentNumberTemplate = "SH{0:yyMMdd}-{1:D5}"
	DefaultPaymentNumberTemplate  = "PI{0:yyMMdd}-{1:D5}"
)

// Store описывает магазин с его настройками и сконфигурированными
// платёжными методами. Порядок PaymentMethods — порядок конфигурации;
// он же задаёт детерминированный порядок перебора кандидатов при
// обработке платёжных callback-ов.
type Store struct {
	ID             string
	Name           string
	Settings       map[string]string
	PaymentMethods []PaymentMethod
}

// Setting возвращает значение настройки магазина или fallback, если она не задана.
func (s *Store) Setting(name, fallback string) string {
	if v, ok := s.Settings[name]; ok && v != "" {
		return v
	}
	return fallback
}

// ActivePaymentMethods возвращает активные платёжные методы магазина
// в порядке конфигурации.
func (s *Store) ActivePaymentMethods() []PaymentMethod {
	result := make([]PaymentMethod, 0, len(s.PaymentMethods))
	for _, m := range s.PaymentMethods {
		if m.IsActive() {
			result = append(result, m)
		}
	}
	return result
}
