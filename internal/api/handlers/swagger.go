package handlers

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"raisserver/docs"
)

// RegisterSwaggerRoutes регистрирует маршруты Swagger UI
func RegisterSwaggerRoutes(router *gin.Engine, port string) {
	// Хост и схемы подставляются в сгенерированную документацию на старте
	docs.SwaggerInfo.Host = "localhost:" + port
	docs.SwaggerInfo.BasePath = "/"
	docs.SwaggerInfo.Schemes = []string{"http", "https"}

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))
}
