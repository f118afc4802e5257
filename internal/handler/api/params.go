package api

import (
	"strconv"

	"github.com/Thegreatsura/merchant/internal/pkg/errs"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func uuidParam(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, errs.InvalidRequest("invalid " + name)
	}
	return id, nil
}

func storeAndID(c *gin.Context, idParam string) (storeID, id uuid.UUID, err error) {
	if storeID, err = uuidParam(c, "storeId"); err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	if id, err = uuidParam(c, idParam); err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return storeID, id, nil
}

func intQuery(c *gin.Context, name string, def int) (int, error) {
	v := c.Query(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errs.InvalidRequest(name + " must be an integer")
	}
	return n, nil
}
