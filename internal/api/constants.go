package api

// CacheOneDay is the Cache-Control value for served images.
const CacheOneDay = "public, max-age=86400"

// Multipart field carrying an uploaded section image.
const sectionImageField = "image"

// Extra room over the image limit for multipart boundaries and headers.
const multipartOverhead = 64 << 10
