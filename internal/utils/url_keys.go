package utils

const (
	// FileIdParamKey is the key for the file ID used in routing parameters.
	FileIdParamKey = "fileId"

	// SearchParamKey is the key for the free text search used in query parameters.
	SearchParamKey = "search"

	// TypeParamKey is the key for the category filter used in query parameters.
	TypeParamKey = "type"

	// FileFormKey is the multipart field carrying an uploaded file.
	FileFormKey = "file"

	// DescriptionFormKey is the multipart field carrying the optional file description.
	DescriptionFormKey = "description"

	// AvatarFormKey is the multipart field carrying a new avatar.
	AvatarFormKey = "avatar"
)
