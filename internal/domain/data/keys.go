package data

const (
	KeySettingsDesign       = "settings_design"
	KeySettingsSEO          = "settings_seo"
	KeySettingsIntegrations = "settings_integrations"
	KeySettingsMedia        = "settings_media"
	KeyHeroSlides           = "hero_slides"
	KeyCollectionBlog       = "collection_blog"
	KeyCollectionTeaching   = "collection_teaching"
	KeyCollectionEvents     = "collection_events"
)

const (
	PageIndex          = "index"
	PageBlog           = "blogg"
	PageBlogPost       = "blogg-post"
	PageEvents         = "arrangementer"
	PageCalendar       = "kalender"
	PageTeachingSeries = "undervisningsserier"
	PageMedia          = "media"
	PageEventDetails   = "arrangement-detaljer"
	PageAbout          = "om-oss"
	PageContact        = "kontakt"
	PageDonations      = "donasjoner"
)
