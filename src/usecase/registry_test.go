package usecase_test

import (
	"testing"

	"github.com/momo182/webeid-deploy/src/entity"
	"github.com/momo182/webeid-deploy/src/usecase"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	t.Run("Default Tasks", func(t *testing.T) {
		r := usecase.DefaultRegistry()
		assert.True(t, r.Has("uname"))
		assert.True(t, r.Has("deploy"))
		assert.False(t, r.Has("Deploy"))

		var names []string
		for _, task := range r.Tasks() {
			names = append(names, task.Name)
		}
		assert.Equal(t, []string{"uname", "deploy"}, names)
	})

	t.Run("Resolve Keeps Order And Repeats", func(t *testing.T) {
		r := usecase.DefaultRegistry()
		tasks, err := r.Resolve([]string{"deploy", "uname", "deploy"})
		require.NoError(t, err)
		require.Len(t, tasks, 3)
		assert.Equal(t, "deploy", tasks[0].Name)
		assert.Equal(t, "uname", tasks[1].Name)
		assert.Equal(t, "deploy", tasks[2].Name)
	})

	t.Run("Resolve Fails On Unknown Name", func(t *testing.T) {
		r := usecase.DefaultRegistry()
		_, err := r.Resolve([]string{"uname", "rollback"})

		var notFound entity.ErrTaskNotFound
		require.True(t, errors.As(err, &notFound))
		assert.Equal(t, "rollback", notFound.Name)
	})

	t.Run("Duplicate Name", func(t *testing.T) {
		_, err := usecase.NewRegistry(usecase.UnameTask(), usecase.UnameTask())
		assert.Error(t, err)
	})

	t.Run("Empty Name", func(t *testing.T) {
		_, err := usecase.NewRegistry(entity.Task{Commands: []string{"true"}})
		assert.Error(t, err)
	})
}

func TestBuiltinTasks(t *testing.T) {
	t.Run("Uname", func(t *testing.T) {
		cmds := usecase.UnameTask().Plan(&entity.Config{DeployDir: "/srv/app"})
		require.Len(t, cmds, 1)
		assert.Equal(t, "uname -a", cmds[0].Run)
		assert.False(t, cmds[0].Dir.Scoped)
	})

	t.Run("Deploy", func(t *testing.T) {
		cmds := usecase.DeployTask().Plan(&entity.Config{DeployDir: "/srv/app"})
		require.Len(t, cmds, 4)

		want := []string{
			"git pull",
			"mvn clean package com.google.cloud.tools:jib-maven-plugin:dockerBuild",
			"docker-compose down",
			"docker-compose up -d",
		}
		for i, cmd := range cmds {
			assert.Equal(t, want[i], cmd.Run)
			assert.Equal(t, entity.In("/srv/app"), cmd.Dir)
		}
	})
}
