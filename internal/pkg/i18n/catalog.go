package i18n

// All user-facing strings live here. Adding a locale means adding a field to Text
// and filling it in below.
var catalog = map[string]Text{
	"reason.NotFound": {
		EN: "Coupon code not found",
		HE: "קוד הקופון לא נמצא",
	},
	"reason.InactiveCoupon": {
		EN: "This coupon is no longer active",
		HE: "הקופון אינו פעיל",
	},
	"reason.NotStarted": {
		EN: "This coupon is not valid yet",
		HE: "הקופון עדיין אינו בתוקף",
	},
	"reason.Expired": {
		EN: "This coupon has expired",
		HE: "תוקף הקופון פג",
	},
	"reason.BelowMinCart": {
		EN: "Cart total must be at least {symbol}{min} to use this coupon",
		HE: "סכום העגלה חייב להיות לפחות {symbol}{min} כדי להשתמש בקופון זה",
	},
	"reason.UsageLimitReached": {
		EN: "This coupon has reached its usage limit",
		HE: "הקופון הגיע למגבלת השימוש",
	},
	"reason.UserLimitReached": {
		EN: "You have already used this coupon the maximum number of times",
		HE: "כבר השתמשת בקופון זה את מספר הפעמים המרבי",
	},
	"reason.NotEligible": {
		EN: "No items in your cart are eligible for this coupon",
		HE: "אין בעגלה פריטים הזכאים לקופון זה",
	},
	"reason.NotStackable": {
		EN: "This coupon cannot be combined with other coupons",
		HE: "לא ניתן לשלב קופון זה עם קופונים אחרים",
	},
	"reason.ParseError": {
		EN: "The cart data is invalid",
		HE: "נתוני העגלה אינם תקינים",
	},

	"coupon.applied": {
		EN: "Coupon {code} applied successfully",
		HE: "הקופון {code} הופעל בהצלחה",
	},

	"label.percent": {
		EN: "{value}% OFF",
		HE: "{value}% הנחה",
	},
	"label.fixed": {
		EN: "{symbol}{value} off",
		HE: "{symbol}{value} הנחה",
	},
	"label.bogo": {
		EN: "Buy {buy} get {get} free",
		HE: "קנה {buy} קבל {get} מתנה",
	},
}
