package book

import "strings"

// OtherLabel 未登记编码的展示名称
const OtherLabel = "Інше"

// enumTable 数据库编码 -> 展示名称
// 编码区分大小写，与入库值逐字匹配
type enumTable[T ~string] map[T]string

func (t enumTable[T]) parse(s string) (T, bool) {
	v := T(strings.TrimSpace(s))
	_, ok := t[v]
	return v, ok
}

func (t enumTable[T]) label(v T) string {
	if l, ok := t[v]; ok {
		return l
	}
	return OtherLabel
}

// parseList 解析逗号分隔的编码列表，丢弃无法识别的项并去重（保持顺序）
func parseList[T ~string](csv string, parse func(string) (T, bool)) []T {
	var out []T
	seen := make(map[T]struct{})
	for _, token := range strings.Split(csv, ",") {
		v, ok := parse(token)
		if !ok {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Genre 体裁
type Genre string

const (
	GenreClassics       Genre = "Classics"
	GenreFantasy        Genre = "Fantasy"
	GenreScienceFiction Genre = "ScienceFiction"
	GenreMystery        Genre = "Mystery"
	GenreRomance        Genre = "Romance"
	GenreNonFiction     Genre = "NonFiction"
	GenreColoring       Genre = "Coloring"
	GenreFairyTales     Genre = "fairyTales"
	GenreBiography      Genre = "Biography"
	GenreHistory        Genre = "History"
	GenrePoetry         Genre = "Poetry"
	GenreSelfHelp       Genre = "SelfHelp"
	GenreBusiness       Genre = "Business"
	GenreTravel         Genre = "Travel"
	GenreCooking        Genre = "Cooking"
	GenreOther          Genre = "Other"
)

var genreLabels = enumTable[Genre]{
	GenreClassics:       "Класика",
	GenreFantasy:        "Фентезі",
	GenreScienceFiction: "Наукова фантастика",
	GenreMystery:        "Детектив",
	GenreRomance:        "Романтика",
	GenreNonFiction:     "Нон-фікшн",
	GenreColoring:       "Розмальовки",
	GenreFairyTales:     "Казки",
	GenreBiography:      "Біографія",
	GenreHistory:        "Історія",
	GenrePoetry:         "Поезія",
	GenreSelfHelp:       "Саморозвиток",
	GenreBusiness:       "Бізнес",
	GenreTravel:         "Подорожі",
	GenreCooking:        "Кулінарія",
	GenreOther:          OtherLabel,
}

func ParseGenre(s string) (Genre, bool) { return genreLabels.parse(s) }
func (g Genre) Label() string           { return genreLabels.label(g) }

// Category 分类标签（一本书可有多个）
type Category string

const (
	CategoryChildren    Category = "ChildrenLiterature"
	CategoryTeenagers   Category = "Teenagers"
	CategoryAdults      Category = "Adults"
	CategoryParents     Category = "Parents"
	CategoryFantasy     Category = "Fantasy"
	CategoryMystery     Category = "Mystery"
	CategoryAdventure   Category = "Adventure"
	CategoryEducational Category = "Educational"
	CategoryOther       Category = "Other"
)

var categoryLabels = enumTable[Category]{
	CategoryChildren:    "Дитяча література",
	CategoryTeenagers:   "Для підлітків",
	CategoryAdults:      "Для дорослих",
	CategoryParents:     "Для батьків",
	CategoryFantasy:     "Фентезі",
	CategoryMystery:     "Детективи",
	CategoryAdventure:   "Пригоди",
	CategoryEducational: "Пізнавальні",
	CategoryOther:       "Інша категорія",
}

func ParseCategory(s string) (Category, bool) { return categoryLabels.parse(s) }
func ParseCategories(csv string) []Category    { return parseList(csv, ParseCategory) }
func (c Category) Label() string               { return categoryLabels.label(c) }

// TargetAge 适读年龄
type TargetAge string

const (
	TargetAge1to3     TargetAge = "1-3"
	TargetAge3to5     TargetAge = "3-5"
	TargetAge5to8     TargetAge = "5-8"
	TargetAge8to12    TargetAge = "8-12"
	TargetAgeTeenager TargetAge = "Teenager"
	TargetAgeAdult    TargetAge = "AdultLiterature"
	TargetAgeOther    TargetAge = "Other"
)

var targetAgeLabels = enumTable[TargetAge]{
	TargetAge1to3:     "1-3 роки",
	TargetAge3to5:     "3-5 років",
	TargetAge5to8:     "5-8 років",
	TargetAge8to12:    "8-12 років",
	TargetAgeTeenager: "Підліткам",
	TargetAgeAdult:    "Дорослим",
	TargetAgeOther:    OtherLabel,
}

func ParseTargetAge(s string) (TargetAge, bool) { return targetAgeLabels.parse(s) }
func ParseTargetAges(csv string) []TargetAge    { return parseList(csv, ParseTargetAge) }
func (a TargetAge) Label() string               { return targetAgeLabels.label(a) }

// BookType 载体类型
type BookType string

const (
	BookTypePaper     BookType = "Paper"
	BookTypeEbook     BookType = "Ebook"
	BookTypeAudiobook BookType = "Audiobook"
)

var bookTypeLabels = enumTable[BookType]{
	BookTypePaper:     "Паперова",
	BookTypeEbook:     "Електронна",
	BookTypeAudiobook: "Аудіокнига",
}

func ParseBookType(s string) (BookType, bool) { return bookTypeLabels.parse(s) }
func ParseBookTypes(csv string) []BookType    { return parseList(csv, ParseBookType) }
func (t BookType) Label() string              { return bookTypeLabels.label(t) }

// PaperType 纸张类型
type PaperType string

const (
	PaperTypeOffset    PaperType = "Offset"
	PaperTypeCoated    PaperType = "Coated"
	PaperTypeNewsprint PaperType = "Newsprint"
	PaperTypeOther     PaperType = "Other"
)

var paperTypeLabels = enumTable[PaperType]{
	PaperTypeOffset:    "Офсетний",
	PaperTypeCoated:    "Крейдований",
	PaperTypeNewsprint: "Газетний",
	PaperTypeOther:     OtherLabel,
}

func ParsePaperType(s string) (PaperType, bool) { return paperTypeLabels.parse(s) }
func (p PaperType) Label() string               { return paperTypeLabels.label(p) }

// CoverType 封面类型
type CoverType string

const (
	CoverTypeHard       CoverType = "Hardcover"
	CoverTypeSoft       CoverType = "Softcover"
	CoverTypeIntegrated CoverType = "Integrated"
	CoverTypeOther      CoverType = "Other"
)

var coverTypeLabels = enumTable[CoverType]{
	CoverTypeHard:       "Тверда",
	CoverTypeSoft:       "М'яка",
	CoverTypeIntegrated: "Інтегральна",
	CoverTypeOther:      OtherLabel,
}

func ParseCoverType(s string) (CoverType, bool) { return coverTypeLabels.parse(s) }
func (c CoverType) Label() string               { return coverTypeLabels.label(c) }

// Language 语言
type Language string

const (
	LanguageUkrainian Language = "Ukrainian"
	LanguageEnglish   Language = "English"
	LanguagePolish    Language = "Polish"
	LanguageGerman    Language = "German"
	LanguageFrench    Language = "French"
	LanguageSpanish   Language = "Spanish"
	LanguageOther     Language = "Other"
)

var languageLabels = enumTable[Language]{
	LanguageUkrainian: "Українська",
	LanguageEnglish:   "Англійська",
	LanguagePolish:    "Польська",
	LanguageGerman:    "Німецька",
	LanguageFrench:    "Французька",
	LanguageSpanish:   "Іспанська",
	LanguageOther:     OtherLabel,
}

func ParseLanguage(s string) (Language, bool) { return languageLabels.parse(s) }
func (l Language) Label() string              { return languageLabels.label(l) }
