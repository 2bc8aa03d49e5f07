package lang

import "fmt"

const (
	En = "en"
	Ru = "ru"
)

// Supported reports whether code has a catalog.
func Supported(code string) bool {
	return code == En || code == Ru
}

// Normalize returns code when supported, otherwise En.
func Normalize(code string) string {
	if Supported(code) {
		return code
	}
	return En
}

// T returns the text for key in the given language, formatted with args when present.
// Unknown languages fall back to English, unknown keys to the key itself.
func T(code, key string, args ...interface{}) string {
	s, ok := catalog[Normalize(code)][key]
	if !ok {
		s, ok = catalog[En][key]
	}
	if !ok {
		s = key
	}
	if len(args) > 0 {
		return fmt.Sprintf(s, args...)
	}
	return s
}

var catalog = map[string]map[string]string{
	En: {
		"header_title":     "🍕 Papaliala's",
		"header_subtitle":  "Authentic Italian Pizza",
		"welcome_back":     "Welcome back, %s! 👋",
		"promise_title":    "⏱ 30 Minutes or FREE!",
		"promise_subtitle": "With live GPS tracking",
		"contact_call":     "📞 Call us: (555) 123-PIZZA",
		"contact_radius":   "🏠 Free delivery in 5km radius",
		"menu_title":       "Our Pizzas",
		"popular":          "Popular",
		"btn_add":          "Add %s — $%s",
		"btn_cart":         "🛍 Cart",
		"btn_cart_count":   "🛍 Cart (%d)",
		"btn_login":        "👤 Login",
		"btn_logout":       "👤 Logout",
		"btn_track":        "📍 Track order",
		"btn_back_home":    "⬅ Back to Home",
		"btn_back_menu":    "⬅ Back to Menu",
		"btn_guest":        "Continue as Guest",

		"login_title":    "🍕 Papaliala's",
		"login_subtitle": "Login to order delicious pizza",
		"login_hint":     "Demo: Use any email and password to login",
		"btn_login_form": "🔑 Login",
		"ask_email":      "Email address:",
		"ask_password":   "Password:",
		"login_required": "Please enter both email and password.",
		"logged_in":      "Logged in as %s.",
		"logged_out":     "You have been logged out.",

		"cart_title":       "Your Cart",
		"cart_empty":       "Your cart is empty",
		"cart_line":        "%s %s ×%d — $%s",
		"coupon_title":     "🏷 Apply Coupon",
		"coupon_hint":      "Try: WELCOME10, SAVE5, STUDENT15, FAMILY20",
		"coupon_applied":   "✓ %s",
		"btn_coupon":       "🏷 Apply Coupon",
		"ask_coupon":       "Enter coupon code:",
		"summary_subtotal": "Subtotal: $%s",
		"summary_discount": "Discount: -$%s",
		"summary_total":    "Total: $%s",
		"btn_place_order":  "Place Order - $%s",

		"tracking_title":    "Order Tracking",
		"tracking_gps":      "📍 Real-time GPS Tracking",
		"tracking_order":    "Order #%s — $%s",
		"tracking_address":  "Delivering to: %s",
		"timer_label":       "⏱ Delivery Timer",
		"timer_subtext":     "Free pizza if not delivered on time!",
		"timer_free":        "Your pizza is FREE! 🎉",
		"map_title":         "🗺 Google Maps Integration",
		"map_subtitle":      "Live driver location",
		"driver_distance":   "📍 Driver: 2.3 km away",
		"step_confirmed":    "🟢 Order confirmed",
		"step_preparing":    "🟢 Pizza in preparation",
		"step_out":          "🟡 Out for delivery",
		"step_delivered":    "⚪ Delivered",
		"tracking_no_order": "No active order yet.",

		"notice_added_title":   "Added to Cart",
		"notice_added_body":    "%s added successfully!",
		"notice_coupon_title":  "Coupon Applied!",
		"notice_invalid_title": "Invalid Coupon",
		"notice_invalid_body":  "Please check your coupon code and try again.",
		"notice_free_title":    "🎉 Free Pizza!",
		"notice_free_body":     "Your pizza is FREE! Delivery took longer than 30 minutes.",

		"choose_lang":      "Choose language / Выберите язык",
		"language_changed": "Language changed.",
		"unknown_command":  "Unknown command. Use /start to open the menu.",
	},
	Ru: {
		"header_subtitle":  "Настоящая итальянская пицца",
		"welcome_back":     "С возвращением, %s! 👋",
		"promise_title":    "⏱ 30 минут или БЕСПЛАТНО!",
		"promise_subtitle": "С отслеживанием по GPS",
		"contact_call":     "📞 Звоните: (555) 123-PIZZA",
		"contact_radius":   "🏠 Бесплатная доставка в радиусе 5 км",
		"menu_title":       "Наши пиццы",
		"popular":          "Хит",
		"btn_add":          "Добавить %s — $%s",
		"btn_cart":         "🛍 Корзина",
		"btn_cart_count":   "🛍 Корзина (%d)",
		"btn_login":        "👤 Войти",
		"btn_logout":       "👤 Выйти",
		"btn_track":        "📍 Отследить заказ",
		"btn_back_home":    "⬅ На главную",
		"btn_back_menu":    "⬅ К меню",
		"btn_guest":        "Продолжить как гость",

		"login_subtitle": "Войдите, чтобы заказать пиццу",
		"login_hint":     "Демо: подойдут любые email и пароль",
		"btn_login_form": "🔑 Войти",
		"ask_email":      "Email:",
		"ask_password":   "Пароль:",
		"login_required": "Введите и email, и пароль.",
		"logged_in":      "Вы вошли как %s.",
		"logged_out":     "Вы вышли из аккаунта.",

		"cart_title":       "Ваша корзина",
		"cart_empty":       "Корзина пуста",
		"coupon_title":     "🏷 Промокод",
		"coupon_hint":      "Попробуйте: WELCOME10, SAVE5, STUDENT15, FAMILY20",
		"btn_coupon":       "🏷 Ввести промокод",
		"ask_coupon":       "Введите промокод:",
		"summary_subtotal": "Сумма: $%s",
		"summary_discount": "Скидка: -$%s",
		"summary_total":    "Итого: $%s",
		"btn_place_order":  "Оформить заказ - $%s",

		"tracking_title":    "Отслеживание заказа",
		"tracking_gps":      "📍 GPS в реальном времени",
		"tracking_order":    "Заказ #%s — $%s",
		"tracking_address":  "Адрес доставки: %s",
		"timer_label":       "⏱ Таймер доставки",
		"timer_subtext":     "Пицца бесплатно, если не успеем!",
		"timer_free":        "Ваша пицца БЕСПЛАТНО! 🎉",
		"map_title":         "🗺 Карта",
		"map_subtitle":      "Курьер на карте",
		"driver_distance":   "📍 Курьер: 2.3 км",
		"step_confirmed":    "🟢 Заказ подтверждён",
		"step_preparing":    "🟢 Пицца готовится",
		"step_out":          "🟡 В пути",
		"step_delivered":    "⚪ Доставлено",
		"tracking_no_order": "Активного заказа пока нет.",

		"notice_added_title":   "Добавлено в корзину",
		"notice_added_body":    "%s успешно добавлена!",
		"notice_coupon_title":  "Промокод применён!",
		"notice_invalid_title": "Неверный промокод",
		"notice_invalid_body":  "Проверьте промокод и попробуйте ещё раз.",
		"notice_free_title":    "🎉 Пицца бесплатно!",
		"notice_free_body":     "Ваша пицца БЕСПЛАТНО! Доставка заняла больше 30 минут.",

		"language_changed": "Язык изменён.",
		"unknown_command":  "Неизвестная команда. Откройте меню через /start.",
	},
}
